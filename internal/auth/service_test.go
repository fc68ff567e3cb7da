package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/model"
)

// --- 목 ---

type mockBackendAuth struct {
	loginFn          func(ctx context.Context, username, password string) (*backend.LoginResponse, error)
	registerFn       func(ctx context.Context, userID, password string) (*backend.UserResponse, error)
	getCurrentUserFn func(ctx context.Context, token string) (*backend.UserResponse, error)
	logoutFn         func(ctx context.Context, token string) (*backend.MessageResponse, error)
	changePasswordFn func(ctx context.Context, token, currentPassword, newPassword string) (*backend.MessageResponse, error)
}

func (m *mockBackendAuth) Login(ctx context.Context, username, password string) (*backend.LoginResponse, error) {
	return m.loginFn(ctx, username, password)
}
func (m *mockBackendAuth) Register(ctx context.Context, userID, password string) (*backend.UserResponse, error) {
	return m.registerFn(ctx, userID, password)
}
func (m *mockBackendAuth) GetCurrentUser(ctx context.Context, token string) (*backend.UserResponse, error) {
	return m.getCurrentUserFn(ctx, token)
}
func (m *mockBackendAuth) Logout(ctx context.Context, token string) (*backend.MessageResponse, error) {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return &backend.MessageResponse{Message: "ok"}, nil
}
func (m *mockBackendAuth) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) (*backend.MessageResponse, error) {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, token, currentPassword, newPassword)
	}
	return &backend.MessageResponse{Message: "ok"}, nil
}

type mockSessionRepo struct {
	createFn         func(ctx context.Context, session *model.Session) error
	deleteByIDFn     func(ctx context.Context, id string) error
	deleteByUserNoFn func(ctx context.Context, userNo int64) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}
func (m *mockSessionRepo) DeleteByUserNo(ctx context.Context, userNo int64) error {
	if m.deleteByUserNoFn != nil {
		return m.deleteByUserNoFn(ctx, userNo)
	}
	return nil
}

// spyCollector 는 세션 메트릭 호출을 기록한다.
type spyCollector struct {
	metrics.NopCollector
	created     int
	invalidated []string
}

func (c *spyCollector) RecordSessionCreated() { c.created++ }
func (c *spyCollector) RecordSessionInvalidated(reason string) {
	c.invalidated = append(c.invalidated, reason)
}

// --- 테스트 ---

// TestService_Login 은 로그인 성공 시 토큰과 사용자 정보가 세션 한 레코드로 저장되는 것을 검증한다.
func TestService_Login(t *testing.T) {
	var created *model.Session
	backendClient := &mockBackendAuth{
		loginFn: func(ctx context.Context, username, password string) (*backend.LoginResponse, error) {
			if username != "minsu" {
				t.Errorf("username = %q, want %q", username, "minsu")
			}
			return &backend.LoginResponse{AccessToken: "token-abc", TokenType: "bearer"}, nil
		},
		getCurrentUserFn: func(ctx context.Context, token string) (*backend.UserResponse, error) {
			if token != "token-abc" {
				t.Errorf("token = %q, want %q", token, "token-abc")
			}
			return &backend.UserResponse{ID: 7, UserID: "minsu"}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}

	svc := NewService(backendClient, sessionRepo, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	session, err := svc.Login(context.Background(), "minsu", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected session to be created")
	}
	if session.AccessToken != "token-abc" {
		t.Errorf("AccessToken = %q, want %q", session.AccessToken, "token-abc")
	}
	if session.UserNo != 7 {
		t.Errorf("UserNo = %d, want %d", session.UserNo, 7)
	}
	if session.UserID != "minsu" {
		t.Errorf("UserID = %q, want %q", session.UserID, "minsu")
	}
	if session.ID == "" {
		t.Error("session ID should not be empty")
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Error("ExpiresAt should be after CreatedAt")
	}
}

// TestService_Login_UserLookupFails_NoSession 은 사용자 조회 실패 시
// 토큰만 남는 고아 세션이 만들어지지 않는 것을 검증한다.
func TestService_Login_UserLookupFails_NoSession(t *testing.T) {
	createCalled := false
	backendClient := &mockBackendAuth{
		loginFn: func(ctx context.Context, username, password string) (*backend.LoginResponse, error) {
			return &backend.LoginResponse{AccessToken: "token-abc"}, nil
		},
		getCurrentUserFn: func(ctx context.Context, token string) (*backend.UserResponse, error) {
			return nil, &backend.Error{Status: 500, Message: "일시적인 오류가 발생했습니다"}
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			createCalled = true
			return nil
		},
	}

	svc := NewService(backendClient, sessionRepo, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	if _, err := svc.Login(context.Background(), "minsu", "password123"); err == nil {
		t.Fatal("expected error when user lookup fails")
	}
	if createCalled {
		t.Error("session should not be created when user lookup fails")
	}
}

// TestService_Register_ImplicitLogin 은 가입 성공 직후 같은 자격 증명으로
// 로그인까지 완료되는 것을 검증한다.
func TestService_Register_ImplicitLogin(t *testing.T) {
	registerCalled := false
	loginCalled := false
	backendClient := &mockBackendAuth{
		registerFn: func(ctx context.Context, userID, password string) (*backend.UserResponse, error) {
			registerCalled = true
			return &backend.UserResponse{ID: 1, UserID: userID}, nil
		},
		loginFn: func(ctx context.Context, username, password string) (*backend.LoginResponse, error) {
			loginCalled = true
			return &backend.LoginResponse{AccessToken: "token-new"}, nil
		},
		getCurrentUserFn: func(ctx context.Context, token string) (*backend.UserResponse, error) {
			return &backend.UserResponse{ID: 1, UserID: "newuser"}, nil
		},
	}

	svc := NewService(backendClient, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	session, err := svc.Register(context.Background(), "newuser", "password123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !registerCalled {
		t.Error("expected backend Register to be called")
	}
	if !loginCalled {
		t.Error("expected implicit Login after registration")
	}
	if session.AccessToken != "token-new" {
		t.Errorf("AccessToken = %q, want %q", session.AccessToken, "token-new")
	}
}

// TestService_Register_InvalidUserID_NoBackendCall 은 형식이 틀린 아이디가
// 백엔드 호출 없이 거부되는 것을 검증한다.
func TestService_Register_InvalidUserID_NoBackendCall(t *testing.T) {
	backendClient := &mockBackendAuth{
		registerFn: func(ctx context.Context, userID, password string) (*backend.UserResponse, error) {
			t.Error("backend Register should not be called for invalid user ID")
			return nil, nil
		},
	}

	svc := NewService(backendClient, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	_, err := svc.Register(context.Background(), "한글아이디", "password123")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != "INVALID_USER_ID" {
		t.Errorf("Code = %q, want %q", apiErr.Code, "INVALID_USER_ID")
	}
}

// TestService_Logout_BackendFailure_StillDeletesLocal 은 백엔드 로그아웃이 실패해도
// 로컬 세션은 반드시 삭제되는 것을 검증한다.
func TestService_Logout_BackendFailure_StillDeletesLocal(t *testing.T) {
	deleted := false
	backendClient := &mockBackendAuth{
		logoutFn: func(ctx context.Context, token string) (*backend.MessageResponse, error) {
			return nil, &backend.Error{Status: 0, Message: "서버에 연결할 수 없습니다"}
		},
	}
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	svc := NewService(backendClient, sessionRepo, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	session := &model.Session{ID: "sess-1", AccessToken: "token-abc"}
	if err := svc.Logout(context.Background(), session); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if !deleted {
		t.Error("local session should be deleted even when backend logout fails")
	}
}

// TestService_ChangePassword_SamePassword 는 새 비밀번호가 현재 비밀번호와 같으면
// 백엔드 호출 없이 거부되는 것을 검증한다.
func TestService_ChangePassword_SamePassword(t *testing.T) {
	backendClient := &mockBackendAuth{
		changePasswordFn: func(ctx context.Context, token, currentPassword, newPassword string) (*backend.MessageResponse, error) {
			t.Error("backend ChangePassword should not be called for same password")
			return nil, nil
		},
	}

	svc := NewService(backendClient, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	session := &model.Session{ID: "sess-1", AccessToken: "token-abc", UserID: "minsu"}
	err := svc.ChangePassword(context.Background(), session, "password123", "password123")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != "SAME_PASSWORD" {
		t.Errorf("Code = %q, want %q", apiErr.Code, "SAME_PASSWORD")
	}
}

// TestService_ChangePassword_TooShort 는 8자 미만의 새 비밀번호가 거부되는 것을 검증한다.
func TestService_ChangePassword_TooShort(t *testing.T) {
	svc := NewService(&mockBackendAuth{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600}, metrics.NopCollector{})

	session := &model.Session{ID: "sess-1", AccessToken: "token-abc"}
	if err := svc.ChangePassword(context.Background(), session, "old-password", "short"); err == nil {
		t.Fatal("expected error for too short password")
	}
}

// TestService_ChangePassword_InvalidatesOtherSessions 는 비밀번호 변경 성공 후
// 해당 사용자의 세션이 일괄 파기되고 현재 세션만 되살아나는 것을 검증한다.
func TestService_ChangePassword_InvalidatesOtherSessions(t *testing.T) {
	var deletedUserNo int64
	var restored *model.Session
	sessionRepo := &mockSessionRepo{
		deleteByUserNoFn: func(ctx context.Context, userNo int64) error {
			deletedUserNo = userNo
			return nil
		},
		createFn: func(ctx context.Context, session *model.Session) error {
			restored = session
			return nil
		},
	}
	collector := &spyCollector{}

	svc := NewService(&mockBackendAuth{}, sessionRepo, ServiceConfig{SessionMaxAge: 3600}, collector)

	session := &model.Session{ID: "sess-1", UserNo: 7, UserID: "minsu", AccessToken: "token-abc"}
	if err := svc.ChangePassword(context.Background(), session, "old-password1", "new-password1"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if deletedUserNo != 7 {
		t.Errorf("DeleteByUserNo called with %d, want 7", deletedUserNo)
	}
	if restored == nil || restored.ID != "sess-1" {
		t.Fatalf("current session should be recreated, got %+v", restored)
	}
	if len(collector.invalidated) != 1 || collector.invalidated[0] != "password_change" {
		t.Errorf("invalidated = %v, want [password_change]", collector.invalidated)
	}
}

// TestService_SessionMetrics 는 세션의 생성과 파기가 메트릭으로 기록되는 것을 검증한다.
func TestService_SessionMetrics(t *testing.T) {
	backendClient := &mockBackendAuth{
		loginFn: func(ctx context.Context, username, password string) (*backend.LoginResponse, error) {
			return &backend.LoginResponse{AccessToken: "token-abc"}, nil
		},
		getCurrentUserFn: func(ctx context.Context, token string) (*backend.UserResponse, error) {
			return &backend.UserResponse{ID: 7, UserID: "minsu"}, nil
		},
	}
	collector := &spyCollector{}

	svc := NewService(backendClient, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600}, collector)

	session, err := svc.Login(context.Background(), "minsu", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if collector.created != 1 {
		t.Errorf("created = %d, want 1", collector.created)
	}

	if err := svc.Logout(context.Background(), session); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if err := svc.InvalidateSession(context.Background(), "sess-2"); err != nil {
		t.Fatalf("InvalidateSession returned error: %v", err)
	}
	want := []string{"logout", "unauthorized"}
	if len(collector.invalidated) != len(want) {
		t.Fatalf("invalidated = %v, want %v", collector.invalidated, want)
	}
	for i := range want {
		if collector.invalidated[i] != want[i] {
			t.Errorf("invalidated[%d] = %q, want %q", i, collector.invalidated[i], want[i])
		}
	}
}
