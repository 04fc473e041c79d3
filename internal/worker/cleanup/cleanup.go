// Package cleanup は期限切れセッションの定期削除ジョブを提供する。
// 期限切れのセッションは参照時に無効として扱われるため、削除の遅れは
// ストレージを占有するだけで認証結果には影響しない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionExpirer は期限切れセッションを削除するインターフェース。
// repository.SessionRepositoryが実装する。
type SessionExpirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// ExpiredRecorder は削除件数を記録する。metrics.Collectorが実装する。
type ExpiredRecorder interface {
	RecordSessionsExpired(count int64)
}

// CleanupJob は期限切れセッションの削除ジョブ。
// 冪等であり、削除対象がなくてもエラーにならない。
type CleanupJob struct {
	sessions SessionExpirer
	logger   *slog.Logger
	recorder ExpiredRecorder
}

// NewCleanupJob は新しいCleanupJobを生成する。recorderはnilでもよい。
func NewCleanupJob(sessions SessionExpirer, logger *slog.Logger, recorder ExpiredRecorder) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
		recorder: recorder,
	}
}

// Run は期限切れセッションを1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("session cleanup failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsExpired(deleted)
	}

	j.logger.Info("session cleanup completed",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回実行し、その後intervalごとにRunを繰り返す。
// ctxがキャンセルされるまでブロックする。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	j.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session cleanup stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

// runOnce はRunのエラーをログに残して継続する。エラーはRun内で記録済み。
func (j *CleanupJob) runOnce(ctx context.Context) {
	_ = j.Run(ctx)
}
