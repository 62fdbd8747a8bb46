package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/authgate/internal/repository"
)

// Sweeper は期限切れセッションレコードを定期的に削除するバックグラウンドジョブ。
// Resolveは期限切れレコードを削除しない（遅延期限切れ）ため、放置すると
// ストアが際限なく成長する。Sweeperは期限切れからさらにTTL経過した
// レコードのみを削除するので、Resolveの観測可能な契約には影響しない。
type Sweeper struct {
	records  repository.SessionRepository
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	metrics  SweepRecorder
}

// SweepRecorder は削除済みセッション数のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type SweepRecorder interface {
	RecordSessionsSwept(count int64)
}

// nopSweepRecorder はメトリクス未設定時のための何もしない実装。
type nopSweepRecorder struct{}

func (nopSweepRecorder) RecordSessionsSwept(count int64) {}

// NewSweeper はSweeperを生成する。metricsがnilの場合は記録を行わない。
// ttlが0以下（無期限セッション）の場合、Startは何もせずに返る。
func NewSweeper(records repository.SessionRepository, ttl, interval time.Duration, logger *slog.Logger, metrics SweepRecorder) *Sweeper {
	if metrics == nil {
		metrics = nopSweepRecorder{}
	}
	return &Sweeper{
		records:  records,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start は掃除ループを実行する。ctxのキャンセルで停止する（ブロッキング）。
func (s *Sweeper) Start(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep は期限切れから1 TTL以上経過したレコードを削除する。
func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-2 * s.ttl)
	deleted, err := s.records.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("session sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if deleted > 0 {
		s.metrics.RecordSessionsSwept(deleted)
		s.logger.Info("expired sessions swept",
			slog.Int64("deleted", deleted),
		)
	}
}
