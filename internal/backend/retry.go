package backend

import "time"

const (
	// maxRetries 는 멱등 GET 요청의 최대 재시도 횟수.
	maxRetries = 2
	// initialBackoff 는 지수 백오프의 초기 지연.
	initialBackoff = 200 * time.Millisecond
	// maxBackoffDelay 는 지수 백오프의 최대 지연.
	maxBackoffDelay = 2 * time.Second
)

// retryableError 는 재시도해도 되는 실패인지 분류한다.
// 네트워크 오류(Status 0), 429, 5xx 만 재시도 대상이다.
// 4xx 는 같은 요청을 반복해도 결과가 달라지지 않으므로 즉시 반환한다.
func retryableError(err error) bool {
	be, ok := err.(*Error)
	if !ok {
		return false
	}
	return be.Status == 0 || be.Status == 429 || be.Status >= 500
}

// backoffDelay 는 재시도 횟수에 따른 지수 백오프 지연을 계산한다.
// 초기 200ms, 2배씩 증가, 최대 2초.
func backoffDelay(attempt int) time.Duration {
	delay := initialBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > maxBackoffDelay {
			return maxBackoffDelay
		}
	}
	return delay
}
