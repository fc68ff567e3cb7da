// Package model 은 도메인 모델을 정의한다.
package model

import "fmt"

// APIError 는 통일 에러 포맷을 나타낸다.
// UI에 표시할 원인 카테고리와 대처 방법을 포함한다.
type APIError struct {
	Code     string // 에러 코드
	Message  string // 에러 메시지
	Category string // 카테고리: auth, validation, platform, search, system
	Action   string // 사용자 대처 방법
}

// Error 는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 정의된 에러 코드
const (
	ErrCodeLoginFailed        = "LOGIN_FAILED"
	ErrCodeDuplicateUserID    = "DUPLICATE_USER_ID"
	ErrCodeInvalidUserID      = "INVALID_USER_ID"
	ErrCodeInvalidPassword    = "INVALID_PASSWORD"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeSamePassword       = "SAME_PASSWORD"
	ErrCodeWrongPassword      = "WRONG_PASSWORD"
	ErrCodeDuplicatePlatform  = "DUPLICATE_PLATFORM"
	ErrCodePlatformNotFound   = "PLATFORM_NOT_FOUND"
	ErrCodeInvalidPriceRange  = "INVALID_PRICE_RANGE"
	ErrCodeEmptyQuery         = "EMPTY_QUERY"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeBackendError       = "BACKEND_ERROR"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
)

// NewLoginFailedError 는 로그인 실패 에러를 생성한다.
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "아이디 또는 비밀번호가 틀렸습니다",
		Category: "auth",
		Action:   "아이디와 비밀번호를 확인한 후 다시 시도해주세요.",
	}
}

// NewDuplicateUserIDError 는 아이디 중복 에러를 생성한다.
func NewDuplicateUserIDError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUserID,
		Message:  "이미 사용 중인 아이디입니다",
		Category: "validation",
		Action:   "다른 아이디를 입력해주세요.",
	}
}

// NewInvalidUserIDError 는 아이디 형식 오류 에러를 생성한다.
func NewInvalidUserIDError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUserID,
		Message:  "아이디는 3-20자의 영문, 숫자, 점(.), 밑줄(_)만 사용 가능합니다",
		Category: "validation",
		Action:   "아이디 형식을 확인해주세요.",
	}
}

// NewInvalidPasswordError 는 비밀번호 형식 오류 에러를 생성한다.
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "비밀번호는 8자 이상이어야 합니다",
		Category: "validation",
		Action:   "8자 이상의 비밀번호를 입력해주세요.",
	}
}

// NewPasswordMismatchError 는 비밀번호 확인 불일치 에러를 생성한다.
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "비밀번호가 일치하지 않습니다",
		Category: "validation",
		Action:   "비밀번호와 비밀번호 확인을 동일하게 입력해주세요.",
	}
}

// NewSamePasswordError 는 현재 비밀번호와 새 비밀번호가 같은 경우의 에러를 생성한다.
func NewSamePasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeSamePassword,
		Message:  "현재 비밀번호와 새 비밀번호가 동일합니다",
		Category: "validation",
		Action:   "현재 비밀번호와 다른 새 비밀번호를 입력해주세요.",
	}
}

// NewWrongPasswordError 는 현재 비밀번호 불일치 에러를 생성한다.
func NewWrongPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPassword,
		Message:  "현재 비밀번호가 틀렸습니다",
		Category: "auth",
		Action:   "현재 비밀번호를 확인한 후 다시 시도해주세요.",
	}
}

// NewDuplicatePlatformError 는 이미 연동된 플랫폼을 다시 연동하려는 경우의 에러를 생성한다.
func NewDuplicatePlatformError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicatePlatform,
		Message:  "이미 연결된 플랫폼입니다",
		Category: "platform",
		Action:   "연동 목록에서 해당 플랫폼을 확인해주세요.",
	}
}

// NewPlatformNotFoundError 는 연동되지 않은 플랫폼을 해제하려는 경우의 에러를 생성한다.
func NewPlatformNotFoundError(platformName string) *APIError {
	return &APIError{
		Code:     ErrCodePlatformNotFound,
		Message:  fmt.Sprintf("연결되지 않은 플랫폼입니다: %s", platformName),
		Category: "platform",
		Action:   "연동 목록을 확인해주세요.",
	}
}

// NewInvalidPriceRangeError 는 가격 범위가 잘못된 경우의 에러를 생성한다.
func NewInvalidPriceRangeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPriceRange,
		Message:  "최소 가격이 최대 가격보다 클 수 없습니다",
		Category: "validation",
		Action:   "가격 범위를 확인해주세요.",
	}
}

// NewEmptyQueryError 는 검색어가 비어 있는 경우의 에러를 생성한다.
func NewEmptyQueryError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyQuery,
		Message:  "검색어를 입력해주세요",
		Category: "validation",
		Action:   "한 글자 이상의 검색어를 입력해주세요.",
	}
}

// NewSessionExpiredError 는 세션 만료 에러를 생성한다.
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "토큰이 만료되었습니다",
		Category: "auth",
		Action:   "다시 로그인해주세요.",
	}
}

// NewBackendError 는 백엔드가 에러 응답을 반환한 경우의 에러를 생성한다.
// message 는 이미 한국어로 번역된 사용자용 메시지여야 한다.
func NewBackendError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeBackendError,
		Message:  message,
		Category: "system",
		Action:   "잠시 후 다시 시도해주세요.",
	}
}

// NewBackendUnreachableError 는 백엔드에 연결할 수 없는 경우의 에러를 생성한다.
func NewBackendUnreachableError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnreachable,
		Message:  "서버에 연결할 수 없습니다",
		Category: "system",
		Action:   "네트워크 상태를 확인한 후 잠시 뒤 다시 시도해주세요.",
	}
}
