package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/folio/internal/model"
)

// PostgresSourceStateRepo はPostgreSQLを使用したソース状態リポジトリ。
type PostgresSourceStateRepo struct {
	db *sql.DB
}

// NewPostgresSourceStateRepo はPostgresSourceStateRepoを生成する。
func NewPostgresSourceStateRepo(db *sql.DB) *PostgresSourceStateRepo {
	return &PostgresSourceStateRepo{db: db}
}

// Find は指定ソースURLの状態を取得する。
// 未登録の場合はゼロ値で初期化した状態を返す。NextFetchAtのゼロ値は
// 常に現在時刻より前のため、未登録ソースは即時フェッチ対象となる。
func (r *PostgresSourceStateRepo) Find(ctx context.Context, sourceURL string) (*model.SourceState, error) {
	state := &model.SourceState{}

	err := r.db.QueryRowContext(ctx,
		`SELECT source_url, etag, last_modified, consecutive_errors, stopped,
		        error_message, next_fetch_at, updated_at
		 FROM source_states WHERE source_url = $1`,
		sourceURL,
	).Scan(
		&state.SourceURL, &state.ETag, &state.LastModified, &state.ConsecutiveErrors,
		&state.Stopped, &state.ErrorMessage, &state.NextFetchAt, &state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return &model.SourceState{SourceURL: sourceURL}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ソース状態の取得に失敗しました: %w", err)
	}

	return state, nil
}

// Save はソース状態を作成または更新する。
func (r *PostgresSourceStateRepo) Save(ctx context.Context, state *model.SourceState) error {
	state.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO source_states (source_url, etag, last_modified, consecutive_errors,
		                            stopped, error_message, next_fetch_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_url) DO UPDATE SET
		     etag = EXCLUDED.etag,
		     last_modified = EXCLUDED.last_modified,
		     consecutive_errors = EXCLUDED.consecutive_errors,
		     stopped = EXCLUDED.stopped,
		     error_message = EXCLUDED.error_message,
		     next_fetch_at = EXCLUDED.next_fetch_at,
		     updated_at = EXCLUDED.updated_at`,
		state.SourceURL, state.ETag, state.LastModified, state.ConsecutiveErrors,
		state.Stopped, state.ErrorMessage, state.NextFetchAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ソース状態の保存に失敗しました: %w", err)
	}

	return nil
}
