// Package debounce 는 키별로 취소 가능한 디바운스 대기를 제공한다.
// 같은 키에 대한 새 호출은 이전 대기를 즉시 중단시키므로,
// 한 키에 동시에 두 개의 타이머가 걸려 있는 일은 없다.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded 는 같은 키의 더 새로운 호출이 도착해 이 대기가 중단되었음을 나타낸다.
var ErrSuperseded = errors.New("debounce: superseded by a newer call")

// Debouncer 는 키별 디바운스 대기를 관리한다.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]chan struct{}
}

// New 는 지정한 대기 시간의 Debouncer 를 생성한다.
func New(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]chan struct{}),
	}
}

// Window 는 설정된 대기 시간을 반환한다.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Wait 는 같은 키의 새 호출 없이 대기 시간이 지날 때까지 블록한다.
// 반환값:
//   - nil: 이 호출자가 살아남았으므로 후속 작업을 진행해도 된다.
//   - ErrSuperseded: 같은 키의 더 새로운 호출이 도착해 중단되었다.
//   - ctx.Err(): 대기 중 컨텍스트가 취소되었다.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		// 이전 대기자를 즉시 중단시킨다
		close(prev)
	}
	cancel := make(chan struct{})
	d.pending[key] = cancel
	d.mu.Unlock()

	timer := time.NewTimer(d.window)
	defer timer.Stop()

	select {
	case <-timer.C:
		d.mu.Lock()
		defer d.mu.Unlock()
		// 타이머 만료와 동시에 새 호출이 도착한 경우에도 최신 호출만 살아남는다
		select {
		case <-cancel:
			return ErrSuperseded
		default:
		}
		if d.pending[key] == cancel {
			delete(d.pending, key)
		}
		return nil

	case <-cancel:
		return ErrSuperseded

	case <-ctx.Done():
		d.mu.Lock()
		if d.pending[key] == cancel {
			delete(d.pending, key)
		}
		d.mu.Unlock()
		return ctx.Err()
	}
}

// PendingCount 는 현재 대기 중인 키 수를 반환한다. 테스트 및 메트릭용.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
