// Package cleanup 은 만료 세션의 자동 삭제 잡을 제공한다.
// 만료 시각이 지난 세션 행을 주기 배치로 삭제해 세션 테이블이
// 무한히 커지는 것을 막는다.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor 는 SQL 의 ExecContext 를 추상화하는 인터페이스.
// *sql.DB 나 *sql.Tx 를 받을 수 있다.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob 은 만료 세션의 자동 삭제 잡.
// 주기 실행 배치로 설계되었으며 멱등한 삭제를 보장한다.
type CleanupJob struct {
	db     Executor
	logger *slog.Logger
}

// NewCleanupJob 은 새 CleanupJob 을 생성한다.
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:     db,
		logger: logger,
	}
}

// Run 은 만료 시각이 지난 세션을 삭제한다.
// 멱등: 삭제 대상이 없어도 에러가 되지 않는다.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	query := `DELETE FROM sessions WHERE expires_at < now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		j.logger.Error("세션 정리 잡 실행에 실패했습니다",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("세션 정리 실행에 실패: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("삭제 건수 취득에 실패했습니다",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("삭제 건수 취득에 실패: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("세션 정리 잡이 완료되었습니다",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start 는 지정 간격의 티커로 정리 잡을 반복 실행한다.
// 구동 직후 1회 실행하고, 컨텍스트가 취소될 때까지 계속한다.
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("세션 정리 스케줄러를 시작했습니다",
		slog.Duration("interval", interval),
	)

	if err := j.Run(ctx); err != nil {
		j.logger.Error("세션 정리 사이클 실행에 실패했습니다",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("세션 정리 스케줄러를 정지했습니다")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("세션 정리 사이클 실행에 실패했습니다",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
