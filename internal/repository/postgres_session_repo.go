package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/minsu/joongomoa/internal/model"
)

// PostgresSessionRepo 는 PostgreSQL 을 사용한 세션 리포지토리.
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo 는 PostgresSessionRepo 를 생성한다.
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create 는 세션을 생성한다.
// 토큰과 사용자 정보는 한 레코드로 저장되므로 부분 세션은 존재할 수 없다.
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_no, user_id, access_token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.UserNo, session.UserID, session.AccessToken,
		session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID 는 지정 ID의 세션을 조회한다. 만료된 경우 nil 을 반환한다.
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_no, user_id, access_token, expires_at, created_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&session.ID, &session.UserNo, &session.UserID, &session.AccessToken,
		&session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// DeleteByID 는 지정 ID의 세션을 삭제한다.
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserNo 는 지정 사용자의 모든 세션을 삭제한다.
func (r *PostgresSessionRepo) DeleteByUserNo(ctx context.Context, userNo int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_no = $1`,
		userNo,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
