// Package repository 는 데이터 영속화 인터페이스를 정의한다.
package repository

import (
	"context"

	"github.com/minsu/joongomoa/internal/model"
)

// SessionRepository 는 세션 데이터의 영속화 인터페이스.
type SessionRepository interface {
	// Create 는 세션을 생성한다.
	Create(ctx context.Context, session *model.Session) error
	// FindByID 는 지정 ID의 세션을 조회한다. 만료된 경우 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID 는 지정 ID의 세션을 삭제한다.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserNo 는 지정 사용자의 모든 세션을 삭제한다.
	DeleteByUserNo(ctx context.Context, userNo int64) error
}
