// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// User 는 백엔드가 관리하는 서비스 사용자를 나타낸다.
type User struct {
	ID     int64  // 백엔드가 발급한 사용자 번호
	UserID string // 로그인 아이디 (소문자 정규화됨)
}

// Session 은 브라우저 한 개에 대응하는 로그인 세션을 나타낸다.
// 백엔드가 발급한 bearer 토큰과 사용자 정보를 한 레코드로 보관한다.
// 토큰과 사용자 정보는 항상 함께 생성되고 함께 삭제된다 (부분 세션 없음).
type Session struct {
	ID          string // 세션 쿠키 값 (UUID)
	UserNo      int64
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
