// Package cleanup は集約記事の自動削除ジョブを提供する。
// 保持期間（デフォルト365日）を超過した記事を日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/folio/internal/repository"
)

// CleanupJob は保持期間を超過した記事の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	postRepo      repository.PostRepository
	logger        *slog.Logger
	RetentionDays int // 記事の保持日数（デフォルト: 365）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// retentionDaysが0以下の場合はデフォルトの365日を使用する。
func NewCleanupJob(postRepo repository.PostRepository, logger *slog.Logger, retentionDays int) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 365
	}
	return &CleanupJob{
		postRepo:      postRepo,
		logger:        logger,
		RetentionDays: retentionDays,
	}
}

// Run は保持期間を超過した記事を削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.postRepo.PruneOlderThan(ctx, j.RetentionDays)
	if err != nil {
		j.logger.Error("記事クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("記事クリーンアップの実行に失敗: %w", err)
	}

	j.logger.Info("記事クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// StartDaily は24時間間隔でクリーンアップジョブを繰り返し実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) StartDaily(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	// 起動直後に1回実行
	if err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップの初回実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
