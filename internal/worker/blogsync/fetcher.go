// Package blogsync は外部ブログフィードのバックグラウンド集約処理を提供する。
// スケジューラ、フェッチャー、リトライ/バックオフ戦略を含む。
package blogsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/folio/internal/blog"
	"github.com/hitoshi/folio/internal/model"
	"github.com/hitoshi/folio/internal/repository"
	"github.com/hitoshi/folio/internal/security"
)

// userAgent はフェッチ時のUser-Agentヘッダー値。
const userAgent = "Folio/1.0 Blog Aggregator"

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Fetcher は個別ブログソースのHTTPフェッチとパースを行う。
// ETag/Last-Modifiedを使用した条件付きGET、SSRF検証、
// gofeedによるパース、PostRepositoryによる記事保存を実行する。
// 記事のリンクと画像は保存前に安全性検証を通す。
type Fetcher struct {
	postRepo    repository.PostRepository
	stateRepo   repository.SourceStateRepository
	sanitizer   security.ContentSanitizerService
	ssrfGuard   SSRFValidator
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
	interval    time.Duration
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(
	postRepo repository.PostRepository,
	stateRepo repository.SourceStateRepository,
	sanitizer security.ContentSanitizerService,
	ssrfGuard SSRFValidator,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
	interval time.Duration,
) *Fetcher {
	return &Fetcher{
		postRepo:    postRepo,
		stateRepo:   stateRepo,
		sanitizer:   sanitizer,
		ssrfGuard:   ssrfGuard,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		interval:    interval,
	}
}

// Fetch は1ソースをフェッチし、結果に応じてソース状態を更新する。
// 保存件数（新規作成数）を返す。
func (f *Fetcher) Fetch(ctx context.Context, state *model.SourceState) (int, error) {
	start := time.Now()

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(state.SourceURL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("source_url", state.SourceURL),
			slog.String("error", err.Error()),
		)
		ApplyStop(state, fmt.Sprintf("SSRF検証失敗: %s", err.Error()))
		f.saveState(ctx, state)
		return 0, fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	// 条件付きGET付きのHTTPリクエスト構築
	client := f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, state.SourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")
	if state.ETag != "" {
		req.Header.Set("If-None-Match", state.ETag)
	}
	if state.LastModified != "" {
		req.Header.Set("If-Modified-Since", state.LastModified)
	}

	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("source_url", state.SourceURL),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(state, fmt.Sprintf("HTTPリクエスト失敗: %s", err.Error()))
		f.saveState(ctx, state)
		return 0, fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	switch ClassifyHTTPStatus(resp.StatusCode) {
	case FetchResultNotModified:
		// 304: コンテンツ未変更 - next_fetch_atのみ更新
		f.logger.Info("ソースは未変更です（304）",
			slog.String("source_url", state.SourceURL),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		ApplySuccess(state, f.interval)
		f.saveState(ctx, state)
		return 0, nil

	case FetchResultStop:
		f.logger.Warn("ソースのフェッチを停止します",
			slog.String("source_url", state.SourceURL),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyStop(state, fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
		f.saveState(ctx, state)
		return 0, nil

	case FetchResultBackoff, FetchResultUnknown:
		f.logger.Warn("ソースにバックオフを適用します",
			slog.String("source_url", state.SourceURL),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyBackoff(state, fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
		f.saveState(ctx, state)
		return 0, nil
	}

	// 200: ボディをサイズ上限付きで読んでパース
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		ApplyBackoff(state, fmt.Sprintf("ボディ読み取り失敗: %s", err.Error()))
		f.saveState(ctx, state)
		return 0, fmt.Errorf("ボディ読み取りに失敗: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		f.logger.Error("フィードのパースに失敗しました",
			slog.String("source_url", state.SourceURL),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(state, err.Error())
		f.saveState(ctx, state)
		return 0, fmt.Errorf("フィードパースに失敗: %w", err)
	}

	// 記事の変換と保存
	created := 0
	for _, item := range feed.Items {
		post := f.buildPost(state.SourceURL, feed.Title, item)
		if post == nil {
			continue
		}
		inserted, err := f.postRepo.Upsert(ctx, post)
		if err != nil {
			f.logger.Error("記事の保存に失敗しました",
				slog.String("source_url", state.SourceURL),
				slog.String("guid", post.GUID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if inserted {
			created++
		}
	}

	// 条件付きGETヘッダーと成功状態を保存
	state.ETag = resp.Header.Get("ETag")
	state.LastModified = resp.Header.Get("Last-Modified")
	ApplySuccess(state, f.interval)
	f.saveState(ctx, state)

	f.logger.Info("ソースのフェッチが完了しました",
		slog.String("source_url", state.SourceURL),
		slog.Int("item_count", len(feed.Items)),
		slog.Int("created", created),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return created, nil
}

// buildPost はフィードの1記事を保存可能なPostに変換する。
// リンクが安全性検証を通らない記事は取り込まない。
// HTMLはサニタイズし、要約とリード画像を抽出する。
func (f *Fetcher) buildPost(sourceURL, sourceTitle string, item *gofeed.Item) *model.Post {
	if item == nil || item.Title == "" {
		return nil
	}

	link := item.Link
	if !security.IsSafeHref(link) {
		f.logger.Warn("安全でないリンクの記事をスキップします",
			slog.String("source_url", sourceURL),
			slog.String("link", link),
		)
		return nil
	}

	guid := item.GUID
	if guid == "" {
		guid = link
	}

	rawHTML := item.Content
	if rawHTML == "" {
		rawHTML = item.Description
	}
	sanitized := f.sanitizer.Sanitize(rawHTML)

	summary := blog.ExtractSummary(sanitized, 280)

	imageURL := ""
	if item.Image != nil && security.IsSafeImageSrc(item.Image.URL) {
		imageURL = item.Image.URL
	}
	if imageURL == "" {
		if lead := blog.ExtractLeadImage(sanitized); security.IsSafeImageSrc(lead) {
			imageURL = lead
		}
	}

	author := ""
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	return &model.Post{
		SourceURL:   sourceURL,
		SourceTitle: sourceTitle,
		GUID:        guid,
		Title:       item.Title,
		Link:        link,
		Summary:     summary,
		ContentHTML: sanitized,
		ImageURL:    imageURL,
		Author:      author,
		PublishedAt: item.PublishedParsed,
		FetchedAt:   time.Now(),
	}
}

// saveState はソース状態を保存し、失敗時はログのみ残す。
func (f *Fetcher) saveState(ctx context.Context, state *model.SourceState) {
	if err := f.stateRepo.Save(ctx, state); err != nil {
		f.logger.Error("ソース状態の保存に失敗しました",
			slog.String("source_url", state.SourceURL),
			slog.String("error", err.Error()),
		)
	}
}
