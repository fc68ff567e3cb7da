package cleanup

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockExecutor 는 테스트용 Executor 구현.
type mockExecutor struct {
	execContextFn func(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (m *mockExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return m.execContextFn(ctx, query, args...)
}

// fakeResult 는 테스트용 sql.Result 구현.
type fakeResult struct {
	rowsAffected int64
	rowsErr      error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, r.rowsErr }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestCleanupJob_Run 은 만료 세션 삭제 쿼리가 실행되는지 검증한다.
func TestCleanupJob_Run(t *testing.T) {
	var gotQuery string
	db := &mockExecutor{
		execContextFn: func(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
			gotQuery = query
			return fakeResult{rowsAffected: 3}, nil
		},
	}

	job := NewCleanupJob(db, testLogger())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(gotQuery, "DELETE FROM sessions") {
		t.Errorf("query = %q, want sessions delete", gotQuery)
	}
	if !strings.Contains(gotQuery, "expires_at < now()") {
		t.Errorf("query = %q, want expiry condition", gotQuery)
	}
}

// TestCleanupJob_Run_NothingToDelete 는 삭제 대상이 없어도 성공하는지 검증한다.
func TestCleanupJob_Run_NothingToDelete(t *testing.T) {
	db := &mockExecutor{
		execContextFn: func(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
			return fakeResult{rowsAffected: 0}, nil
		},
	}

	job := NewCleanupJob(db, testLogger())
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

// TestCleanupJob_Run_ExecError 는 쿼리 실패가 에러로 전파되는지 검증한다.
func TestCleanupJob_Run_ExecError(t *testing.T) {
	db := &mockExecutor{
		execContextFn: func(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
			return nil, errors.New("connection refused")
		},
	}

	job := NewCleanupJob(db, testLogger())
	if err := job.Run(context.Background()); err == nil {
		t.Error("Run() = nil, want error")
	}
}

// TestCleanupJob_Start 는 구동 직후 1회 실행되고 컨텍스트 취소로
// 정지하는지 검증한다.
func TestCleanupJob_Start(t *testing.T) {
	var runs atomic.Int64
	db := &mockExecutor{
		execContextFn: func(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
			runs.Add(1)
			return fakeResult{}, nil
		},
	}

	job := NewCleanupJob(db, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	// 구동 직후의 1회 실행을 기다린다
	deadline := time.After(1 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial run did not happen")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Start did not stop after context cancel")
	}

	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
}
