package auth

import (
	"regexp"
	"strings"

	"github.com/minsu/joongomoa/internal/model"
)

// userIDPattern 은 허용되는 아이디 문자 집합. 길이는 별도로 검사한다.
var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

const (
	userIDMinLen   = 3
	userIDMaxLen   = 20
	passwordMinLen = 8
)

// ValidateUserID 는 아이디의 로컬 형식 검증을 수행한다.
// 3-20자, 영문/숫자/점(.)/밑줄(_)만 허용. 통과하지 못하면 네트워크 호출 없이 에러를 반환한다.
func ValidateUserID(userID string) error {
	userID = strings.TrimSpace(userID)
	if len(userID) < userIDMinLen || len(userID) > userIDMaxLen {
		return model.NewInvalidUserIDError()
	}
	if !userIDPattern.MatchString(userID) {
		return model.NewInvalidUserIDError()
	}
	return nil
}

// ValidatePassword 는 비밀번호의 로컬 형식 검증을 수행한다. 8자 이상이어야 한다.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return model.NewInvalidPasswordError()
	}
	return nil
}
