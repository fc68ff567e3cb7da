package backend

import "fmt"

// Error 는 백엔드 호출 실패를 정규화한 에러 값.
// HTTP 상태 코드와 한국어로 번역된 사용자용 메시지를 담는다.
// 응답 자체를 받지 못한 경우(네트워크 오류) Status 는 0 이다.
type Error struct {
	Status  int
	Message string
}

// Error 는 error 인터페이스를 구현한다.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// errorTranslations 는 백엔드가 돌려주는 영어 detail 문자열을 한국어로 번역하는 정적 테이블.
var errorTranslations = map[string]string{
	"Invalid user ID or password":         "아이디 또는 비밀번호가 틀렸습니다",
	"This user ID is already in use":      "이미 사용 중인 아이디입니다",
	"Your current password is incorrect":  "현재 비밀번호가 틀렸습니다",
	"Token has been invalidated":          "토큰이 만료되었습니다",
	"Invalid token":                       "유효하지 않은 토큰입니다",
	"platform already connected":          "이미 연결된 플랫폼입니다",
	"platform not found":                  "연결되지 않은 플랫폼입니다",
	"An error occurred":                   "오류가 발생했습니다",
}

// genericErrorMessage 는 번역 테이블에 없는 메시지의 대체 문구.
const genericErrorMessage = "오류가 발생했습니다"

// serverErrorMessage 는 5xx 응답의 사용자용 문구.
const serverErrorMessage = "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해주세요"

// unreachableMessage 는 응답을 받지 못한 경우의 사용자용 문구.
const unreachableMessage = "서버에 연결할 수 없습니다"

// translate 는 백엔드 detail 문자열을 사용자용 한국어 메시지로 변환한다.
// 테이블에 없는 문자열은 그대로 통과시키되, 비어 있으면 일반 문구를 반환한다.
func translate(detail string) string {
	if detail == "" {
		return genericErrorMessage
	}
	if ko, ok := errorTranslations[detail]; ok {
		return ko
	}
	return detail
}

// IsUnauthorized 는 에러가 HTTP 401 응답에서 비롯되었는지 판정한다.
// 세션 파기 및 로그인 화면 리다이렉트 판단에 사용된다.
func IsUnauthorized(err error) bool {
	be, ok := err.(*Error)
	return ok && be.Status == 401
}

// StatusOf 는 에러에 담긴 HTTP 상태 코드를 반환한다. 백엔드 에러가 아니면 0 을 반환한다.
func StatusOf(err error) int {
	if be, ok := err.(*Error); ok {
		return be.Status
	}
	return 0
}

// MessageOf 는 에러의 사용자용 메시지를 반환한다.
// 백엔드 에러가 아닌 경우 일반 문구를 반환해 내부 정보가 노출되지 않게 한다.
func MessageOf(err error) string {
	if be, ok := err.(*Error); ok {
		return be.Message
	}
	return genericErrorMessage
}
