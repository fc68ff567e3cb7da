package debounce

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestDebouncer_SingleWait 는 후속 호출이 없으면 대기 시간 후 nil 이 반환되는 것을 검증한다.
func TestDebouncer_SingleWait(t *testing.T) {
	d := New(10 * time.Millisecond)

	start := time.Now()
	if err := d.Wait(context.Background(), "key"); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Wait returned after %v, want at least 10ms", elapsed)
	}
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0", d.PendingCount())
	}
}

// TestDebouncer_SupersededByNewerCall 은 같은 키의 새 호출이
// 이전 대기를 즉시 중단시키는 것을 검증한다.
func TestDebouncer_SupersededByNewerCall(t *testing.T) {
	d := New(50 * time.Millisecond)

	firstErr := make(chan error, 1)
	firstStarted := make(chan struct{})
	go func() {
		close(firstStarted)
		firstErr <- d.Wait(context.Background(), "key")
	}()

	<-firstStarted
	time.Sleep(5 * time.Millisecond) // 첫 대기가 등록될 시간을 준다

	secondErr := d.Wait(context.Background(), "key")

	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first Wait error = %v, want ErrSuperseded", err)
	}
	if secondErr != nil {
		t.Errorf("second Wait error = %v, want nil (latest call survives)", secondErr)
	}
}

// TestDebouncer_OnlyLatestSurvives 는 연속 N회 호출에서
// 마지막 호출만 살아남는 것을 검증한다.
func TestDebouncer_OnlyLatestSurvives(t *testing.T) {
	d := New(20 * time.Millisecond)

	const calls = 5
	var wg sync.WaitGroup
	var mu sync.Mutex
	survived := 0
	superseded := 0

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Wait(context.Background(), "key")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				survived++
			case errors.Is(err, ErrSuperseded):
				superseded++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	if survived != 1 {
		t.Errorf("survived = %d, want exactly 1", survived)
	}
	if superseded != calls-1 {
		t.Errorf("superseded = %d, want %d", superseded, calls-1)
	}
}

// TestDebouncer_IndependentKeys 는 다른 키의 대기가 서로 영향을 주지 않는 것을 검증한다.
func TestDebouncer_IndependentKeys(t *testing.T) {
	d := New(10 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, key := range []string{"key-a", "key-b"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			errs[i] = d.Wait(context.Background(), key)
		}(i, key)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Wait[%d] error = %v, want nil", i, err)
		}
	}
}

// TestDebouncer_ContextCancel 은 대기 중 컨텍스트 취소가 전파되는 것을 검증한다.
func TestDebouncer_ContextCancel(t *testing.T) {
	d := New(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := d.Wait(ctx, "key")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v, want context.Canceled", err)
	}
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0 after cancel", d.PendingCount())
	}
}

// TestDebouncer_Window 는 설정된 대기 시간이 그대로 보고되는 것을 검증한다.
func TestDebouncer_Window(t *testing.T) {
	d := New(300 * time.Millisecond)
	if d.Window() != 300*time.Millisecond {
		t.Errorf("Window = %v, want 300ms", d.Window())
	}
}
