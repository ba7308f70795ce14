package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/folio/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// postColumns はSELECT句で使用するカラムリスト。
const postColumns = `id, source_url, source_title, guid, title, link, summary,
	content_html, image_url, author, published_at, fetched_at, created_at, updated_at`

// scanPost は1行を*model.Postに読み込む。
func scanPost(row interface{ Scan(...any) error }) (*model.Post, error) {
	post := &model.Post{}
	var publishedAt sql.NullTime

	err := row.Scan(
		&post.ID, &post.SourceURL, &post.SourceTitle, &post.GUID, &post.Title,
		&post.Link, &post.Summary, &post.ContentHTML, &post.ImageURL, &post.Author,
		&publishedAt, &post.FetchedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	return post, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return post, nil
}

// Upsert は(source_url, guid)をキーに記事を作成または更新する。
// 既存記事は本文・要約・画像・タイトルなどの内容フィールドのみ更新し、
// created_atは維持する。新規作成の場合はtrueを返す。
func (r *PostgresPostRepo) Upsert(ctx context.Context, post *model.Post) (bool, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now()

	var publishedAt sql.NullTime
	if post.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *post.PublishedAt, Valid: true}
	}

	var inserted bool
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (id, source_url, source_title, guid, title, link, summary,
		                    content_html, image_url, author, published_at, fetched_at,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		 ON CONFLICT (source_url, guid) DO UPDATE SET
		     source_title = EXCLUDED.source_title,
		     title = EXCLUDED.title,
		     link = EXCLUDED.link,
		     summary = EXCLUDED.summary,
		     content_html = EXCLUDED.content_html,
		     image_url = EXCLUDED.image_url,
		     author = EXCLUDED.author,
		     published_at = EXCLUDED.published_at,
		     fetched_at = EXCLUDED.fetched_at,
		     updated_at = EXCLUDED.updated_at
		 RETURNING (created_at = updated_at)`,
		post.ID, post.SourceURL, post.SourceTitle, post.GUID, post.Title, post.Link,
		post.Summary, post.ContentHTML, post.ImageURL, post.Author,
		publishedAt, post.FetchedAt, now,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("記事のUPSERTに失敗しました: %w", err)
	}

	return inserted, nil
}

// List は公開日時の降順で記事一覧を返す。
// published_atがNULLの記事は末尾に回す。
func (r *PostgresPostRepo) List(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 ORDER BY published_at DESC NULLS LAST, created_at DESC
		 OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("記事行の読み込みに失敗しました: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}

	return posts, nil
}

// Count は記事の総数を返す。
func (r *PostgresPostRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("記事数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// PruneOlderThan は保持日数を超過した記事を削除し、削除件数を返す。
// 冪等: 削除対象がない場合でもエラーにならない。
func (r *PostgresPostRepo) PruneOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	interval := fmt.Sprintf("%d days", retentionDays)

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE created_at < now() - $1::interval`, interval)
	if err != nil {
		return 0, fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return deleted, nil
}
