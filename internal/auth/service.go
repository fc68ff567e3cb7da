// Package auth 는 로그인/가입/로그아웃과 세션 수명 주기 관리를 제공한다.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/model"
	"github.com/minsu/joongomoa/internal/repository"
)

// BackendAuthClient 는 인증 서비스가 필요로 하는 백엔드 호출의 인터페이스.
// backend.Client 의 부분집합으로 정의한다.
type BackendAuthClient interface {
	Login(ctx context.Context, username, password string) (*backend.LoginResponse, error)
	Register(ctx context.Context, userID, password string) (*backend.UserResponse, error)
	GetCurrentUser(ctx context.Context, token string) (*backend.UserResponse, error)
	Logout(ctx context.Context, token string) (*backend.MessageResponse, error)
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) (*backend.MessageResponse, error)
}

// ServiceConfig 는 인증 서비스의 설정.
type ServiceConfig struct {
	SessionMaxAge int // 세션 유효 기간 (초)
}

// Service 는 인증 비즈니스 로직을 제공한다.
// 세션 레코드가 곧 "인증됨" 상태이며, 토큰과 사용자 정보는 항상 한 레코드로
// 생성되고 한 번에 삭제된다. 고아 부분 세션은 만들지 않는다.
type Service struct {
	backend     BackendAuthClient
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	metrics     metrics.MetricsCollector
}

// NewService 는 Service 를 생성한다.
func NewService(backendClient BackendAuthClient, sessionRepo repository.SessionRepository, config ServiceConfig, collector metrics.MetricsCollector) *Service {
	return &Service{
		backend:     backendClient,
		sessionRepo: sessionRepo,
		config:      config,
		metrics:     collector,
	}
}

// Login 은 백엔드 로그인 후 세션을 발급한다.
// 1. 백엔드에서 토큰 발급
// 2. 발급된 토큰으로 사용자 정보 조회
// 3. 토큰 + 사용자 정보를 세션 한 레코드로 저장
// 2단계가 실패하면 세션은 만들어지지 않으므로 토큰만 남는 일은 없다.
func (s *Service) Login(ctx context.Context, userID, password string) (*model.Session, error) {
	userID = strings.TrimSpace(userID)

	loginResp, err := s.backend.Login(ctx, userID, password)
	if err != nil {
		return nil, err
	}

	userResp, err := s.backend.GetCurrentUser(ctx, loginResp.AccessToken)
	if err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, userResp, loginResp.AccessToken)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in",
		slog.String("user_id", userResp.UserID),
		slog.String("session_id", session.ID),
	)

	return session, nil
}

// Register 는 계정을 등록한 뒤 같은 자격 증명으로 즉시 로그인한다.
func (s *Service) Register(ctx context.Context, userID, password string) (*model.Session, error) {
	userID = strings.TrimSpace(userID)

	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.backend.Register(ctx, userID, password); err != nil {
		return nil, err
	}

	slog.Info("new user registered", slog.String("user_id", userID))

	// 등록 직후 암묵적 로그인
	return s.Login(ctx, userID, password)
}

// Logout 은 세션을 파기한다.
// 백엔드 토큰 무효화는 최선 노력(best effort)으로 시도하고,
// 실패하더라도 로컬 세션은 반드시 삭제한다.
func (s *Service) Logout(ctx context.Context, session *model.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	if _, err := s.backend.Logout(ctx, session.AccessToken); err != nil {
		slog.Warn("백엔드 로그아웃 호출에 실패했습니다 (로컬 세션은 삭제합니다)",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.metrics.RecordSessionInvalidated("logout")

	slog.Info("user logged out", slog.String("session_id", session.ID))
	return nil
}

// ChangePassword 는 비밀번호를 변경한다.
// 로컬 검증(새 비밀번호 형식, 현재 비밀번호와의 동일 여부)을 통과한 경우에만
// 백엔드를 호출한다.
func (s *Service) ChangePassword(ctx context.Context, session *model.Session, currentPassword, newPassword string) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return model.NewSamePasswordError()
	}

	if _, err := s.backend.ChangePassword(ctx, session.AccessToken, currentPassword, newPassword); err != nil {
		return err
	}

	// 비밀번호가 바뀌면 이 사용자의 세션을 전부 파기하고 현재 세션만 되살린다.
	// 다른 브라우저에 남아 있던 세션은 다음 요청에서 로그인으로 보내진다.
	if err := s.sessionRepo.DeleteByUserNo(ctx, session.UserNo); err != nil {
		slog.Warn("세션 일괄 파기에 실패했습니다",
			slog.Int64("user_no", session.UserNo),
			slog.String("error", err.Error()),
		)
	} else {
		s.metrics.RecordSessionInvalidated("password_change")
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
	}

	slog.Info("password changed", slog.String("user_id", session.UserID))
	return nil
}

// InvalidateSession 은 백엔드 호출 없이 로컬 세션만 파기한다.
// 로그인 이외의 호출에서 401 이 관측된 경우의 세션 정리에 사용된다.
func (s *Service) InvalidateSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	s.metrics.RecordSessionInvalidated("unauthorized")
	slog.Info("session invalidated", slog.String("session_id", sessionID))
	return nil
}

// createSession 은 토큰과 사용자 정보를 묶어 새 세션 레코드를 만든다.
func (s *Service) createSession(ctx context.Context, user *backend.UserResponse, accessToken string) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:          uuid.New().String(),
		UserNo:      user.ID,
		UserID:      user.UserID,
		AccessToken: accessToken,
		ExpiresAt:   now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:   now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.RecordSessionCreated()

	return session, nil
}
