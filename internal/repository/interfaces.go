// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/folio/internal/model"
)

// PostRepository は集約記事データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Upsert は(source_url, guid)をキーに記事を作成または更新する。
	// 新規作成の場合はtrueを返す。
	Upsert(ctx context.Context, post *model.Post) (bool, error)

	// List は公開日時の降順で記事一覧を返す。
	// offsetとlimitによるページネーションを行う。
	List(ctx context.Context, offset, limit int) ([]*model.Post, error)

	// Count は記事の総数を返す。
	Count(ctx context.Context) (int, error)

	// PruneOlderThan は保持日数を超過した記事を削除し、削除件数を返す。
	PruneOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// SourceStateRepository はブログソースごとのフェッチ状態の永続化インターフェース。
type SourceStateRepository interface {
	// Find は指定ソースURLの状態を取得する。
	// 未登録の場合はゼロ値で初期化した状態を返す。
	Find(ctx context.Context, sourceURL string) (*model.SourceState, error)

	// Save はソース状態を作成または更新する。
	Save(ctx context.Context, state *model.SourceState) error
}
