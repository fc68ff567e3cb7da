package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/middleware"
	"github.com/minsu/joongomoa/internal/model"
)

// AuthServiceInterface 는 인증 핸들러가 필요로 하는 서비스 인터페이스.
type AuthServiceInterface interface {
	Login(ctx context.Context, userID, password string) (*model.Session, error)
	Register(ctx context.Context, userID, password string) (*model.Session, error)
	Logout(ctx context.Context, session *model.Session) error
	ChangePassword(ctx context.Context, session *model.Session, currentPassword, newPassword string) error
	InvalidateSession(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig 는 인증 핸들러의 설정.
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // 세션 쿠키 유효 기간 (초)
	CSRF          middleware.CSRFConfig
}

// AuthHandler 는 로그인/가입/로그아웃 폼의 HTTP 핸들러.
// 성공 시 세션 쿠키를 설정하거나 삭제한다. 토큰 자체는 브라우저에 내려가지 않는다.
type AuthHandler struct {
	service  AuthServiceInterface
	renderer *Renderer
	config   AuthHandlerConfig
}

// NewAuthHandler 는 AuthHandler 를 생성한다.
func NewAuthHandler(service AuthServiceInterface, renderer *Renderer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		config:   config,
	}
}

// Login 은 로그인 폼 제출을 처리한다.
// POST /login
// 성공하면 세션 쿠키를 설정하고 홈으로 이동한다.
// 실패하면 입력한 아이디를 유지한 채 로그인 페이지를 다시 렌더링한다.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	userID := r.PostFormValue("user_id")
	password := r.PostFormValue("password")

	session, err := h.service.Login(r.Context(), userID, password)
	if err != nil {
		slog.Warn("로그인에 실패했습니다",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		h.renderer.Render(w, http.StatusUnauthorized, "login.html", loginPageData{
			basePageData: basePageData{
				Title:     "로그인",
				CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.CSRF),
				Error:     displayMessage(err),
			},
			UserID: userID,
		})
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Register 는 가입 폼 제출을 처리한다.
// POST /register
// 가입에 성공하면 같은 자격 증명으로 즉시 로그인된 상태로 홈에 도착한다.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	userID := r.PostFormValue("user_id")
	password := r.PostFormValue("password")
	passwordConfirm := r.PostFormValue("password_confirm")

	renderError := func(status int, msg string) {
		h.renderer.Render(w, status, "register.html", registerPageData{
			basePageData: basePageData{
				Title:     "회원가입",
				CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.CSRF),
				Error:     msg,
			},
			UserID: userID,
		})
	}

	if password != passwordConfirm {
		renderError(http.StatusBadRequest, model.NewPasswordMismatchError().Message)
		return
	}

	session, err := h.service.Register(r.Context(), userID, password)
	if err != nil {
		slog.Warn("회원가입에 실패했습니다",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		renderError(statusFor(err), displayMessage(err))
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout 은 세션을 파기한다.
// POST /logout
// 백엔드 무효화의 성패와 무관하게 쿠키는 항상 삭제하고 로그인 페이지로 이동한다.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session != nil {
		if err := h.service.Logout(r.Context(), session); err != nil {
			slog.Error("로그아웃 처리에 실패했습니다",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ChangePassword 는 비밀번호 변경 폼 제출을 처리한다.
// POST /settings/password
// 성공하면 완료 메시지와 함께 설정 페이지를 다시 렌더링한다.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	currentPassword := r.PostFormValue("current_password")
	newPassword := r.PostFormValue("new_password")
	newPasswordConfirm := r.PostFormValue("new_password_confirm")

	data := settingsPageData{
		basePageData: basePageData{
			Title:     "설정",
			UserID:    session.UserID,
			LoggedIn:  true,
			CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.CSRF),
		},
	}

	if newPassword != newPasswordConfirm {
		data.Error = model.NewPasswordMismatchError().Message
		h.renderer.Render(w, http.StatusBadRequest, "settings.html", data)
		return
	}

	if err := h.service.ChangePassword(r.Context(), session, currentPassword, newPassword); err != nil {
		if backend.IsUnauthorized(err) {
			h.expireSession(w, r, session.ID)
			return
		}
		data.Error = displayMessage(err)
		h.renderer.Render(w, statusFor(err), "settings.html", data)
		return
	}

	data.Notice = "비밀번호가 변경되었습니다."
	h.renderer.Render(w, http.StatusOK, "settings.html", data)
}

// expireSession 은 백엔드에서 401 이 관측된 세션을 정리한다.
// 로컬 세션 삭제와 쿠키 제거 후 로그인 페이지로 보낸다.
func (h *AuthHandler) expireSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.service.InvalidateSession(r.Context(), sessionID); err != nil {
		slog.Error("세션 무효화에 실패했습니다",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// setSessionCookie 는 HttpOnly 세션 쿠키를 설정한다.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie 는 세션 쿠키를 삭제한다.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// displayMessage 는 에러에서 사용자에게 보여줄 한국어 메시지를 추출한다.
func displayMessage(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return backend.MessageOf(err)
}

// statusFor 는 에러에 대응하는 HTTP 상태 코드를 결정한다.
// 검증 에러는 400, 백엔드 유래 에러는 원 상태 코드를 따른다.
func statusFor(err error) int {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadRequest
	}
	if status := backend.StatusOf(err); status >= 400 {
		return status
	}
	return http.StatusBadGateway
}
