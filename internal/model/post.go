// Package model はドメインモデルを定義する。
package model

import "time"

// Post は外部ブログから集約した記事を表す。
// Link と ImageURL は保存前に安全性検証を通過した値のみが入る。
// Summary と ContentHTML はサニタイズ済み。
type Post struct {
	ID          string
	SourceURL   string // 取得元フィードのURL
	SourceTitle string // 取得元フィードのタイトル
	GUID        string
	Title       string
	Link        string
	Summary     string // プレーンテキストの要約
	ContentHTML string // サニタイズ済みHTML
	ImageURL    string // リード画像のURL（安全性検証済み、なければ空）
	Author      string
	PublishedAt *time.Time
	FetchedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SourceState はブログソースごとのフェッチ状態を表す。
// 条件付きGET用のETag/Last-Modifiedと、バックオフ制御用の
// 連続エラー回数・次回フェッチ予定時刻を保持する。
type SourceState struct {
	SourceURL         string
	ETag              string
	LastModified      string
	ConsecutiveErrors int
	Stopped           bool
	ErrorMessage      string
	NextFetchAt       time.Time
	UpdatedAt         time.Time
}

// ParsedPost はフィードパーサーから取得した未保存の記事データを表す。
// ワーカーがフィードをパースした後、PostRepositoryに渡される。
type ParsedPost struct {
	GUID        string
	Title       string
	Link        string
	Summary     string
	ContentHTML string
	ImageURL    string
	Author      string
	PublishedAt *time.Time
}
