package blog

import (
	"context"
	"fmt"

	"github.com/hitoshi/folio/internal/model"
	"github.com/hitoshi/folio/internal/repository"
)

const (
	// defaultPageSize は記事一覧の1回の取得件数（デフォルト）。
	defaultPageSize = 20
	// maxPageSize は記事一覧の1回の取得件数の上限。
	maxPageSize = 100
)

// Service は集約記事の参照ロジックを提供する。
type Service struct {
	postRepo repository.PostRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(postRepo repository.PostRepository) *Service {
	return &Service{postRepo: postRepo}
}

// ListResult は記事一覧の取得結果。
type ListResult struct {
	Posts   []*model.Post
	Total   int
	HasMore bool
}

// ListPosts は公開日時の降順で記事一覧をページネーション付きで返す。
// limitが0以下の場合はデフォルト値を、上限を超える場合は上限値を使用する。
// offsetが負の場合は0として扱う。
func (s *Service) ListPosts(ctx context.Context, offset, limit int) (*ListResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗: %w", err)
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("記事数の取得に失敗: %w", err)
	}

	return &ListResult{
		Posts:   posts,
		Total:   total,
		HasMore: offset+len(posts) < total,
	}, nil
}

// GetPost は指定IDの記事を返す。見つからない場合はAPIErrorを返す。
func (s *Service) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}
