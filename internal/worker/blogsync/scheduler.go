package blogsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/folio/internal/model"
	"github.com/hitoshi/folio/internal/repository"
)

// SourceFetcher はブログソースフェッチの実行インターフェース。
type SourceFetcher interface {
	// Fetch は指定ソースをフェッチし、新規保存した記事数を返す。
	Fetch(ctx context.Context, state *model.SourceState) (int, error)
}

// SyncRecorder は同期サイクルのメトリクス記録インターフェース。
type SyncRecorder interface {
	RecordSyncSuccess(sourceURL string)
	RecordSyncFailure(sourceURL string)
	RecordPostsUpserted(count int)
}

// Scheduler はブログソースフェッチのスケジューリングと並列制御を行う。
// 定期ティッカーでフェッチ予定時刻に達したソースを選び、
// semaphoreパターンで最大並列数を制御しながらフェッチを実行する。
type Scheduler struct {
	sources        []string
	stateRepo      repository.SourceStateRepository
	fetcher        SourceFetcher
	recorder       SyncRecorder
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。
func NewScheduler(
	sources []string,
	stateRepo repository.SourceStateRepository,
	fetcher SourceFetcher,
	recorder SyncRecorder,
	logger *slog.Logger,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Scheduler{
		sources:        sources,
		stateRepo:      stateRepo,
		fetcher:        fetcher,
		recorder:       recorder,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("同期スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("source_count", len(s.sources)),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("同期サイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("同期スケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("同期サイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce はフェッチ予定時刻に達したソースを選び、並列でフェッチを実行する。
// semaphoreパターンで最大並列数を制御する。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	now := time.Now()

	// 停止中でなくフェッチ予定時刻に達したソースを選ぶ
	var due []*model.SourceState
	for _, sourceURL := range s.sources {
		state, err := s.stateRepo.Find(ctx, sourceURL)
		if err != nil {
			s.logger.Error("ソース状態の取得に失敗しました",
				slog.String("source_url", sourceURL),
				slog.String("error", err.Error()),
			)
			continue
		}
		if state.Stopped || state.NextFetchAt.After(now) {
			continue
		}
		due = append(due, state)
	}

	if len(due) == 0 {
		s.logger.Info("フェッチ対象のソースはありません")
		return nil
	}

	s.logger.Info("同期サイクルを開始します",
		slog.Int("source_count", len(due)),
	)

	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup
	for _, state := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(state *model.SourceState) {
			defer wg.Done()
			defer func() { <-sem }()

			created, err := s.fetcher.Fetch(ctx, state)
			if err != nil {
				s.recorder.RecordSyncFailure(state.SourceURL)
				return
			}
			s.recorder.RecordSyncSuccess(state.SourceURL)
			if created > 0 {
				s.recorder.RecordPostsUpserted(created)
			}
		}(state)
	}
	wg.Wait()

	s.logger.Info("同期サイクルが完了しました",
		slog.Int("source_count", len(due)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}
