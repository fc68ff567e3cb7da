package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/middleware"
	"github.com/minsu/joongomoa/internal/model"
)

// SearchServiceInterface 는 검색 페이지가 필요로 하는 서비스 인터페이스.
type SearchServiceInterface interface {
	Search(ctx context.Context, token string, query model.SearchQuery) (*model.SearchResult, error)
}

// PlatformServiceInterface 는 플랫폼 연동 페이지가 필요로 하는 서비스 인터페이스.
type PlatformServiceInterface interface {
	List(ctx context.Context, token string) ([]model.PlatformLink, error)
	Connect(ctx context.Context, token, platformName, platformUserID, password string) (*model.PlatformLink, error)
	Disconnect(ctx context.Context, token, platformName string) error
}

// SessionInvalidator 는 401 관측 시 로컬 세션을 정리하는 인터페이스.
type SessionInvalidator interface {
	InvalidateSession(ctx context.Context, sessionID string) error
}

// --- 페이지 데이터 ---

// basePageData 는 모든 페이지가 공유하는 레이아웃 데이터.
type basePageData struct {
	Title     string
	UserID    string // 로그인 중인 사용자의 아이디. 비로그인 시 빈 문자열
	LoggedIn  bool
	CSRFToken string
	Error     string // 페이지 상단에 표시할 에러 메시지
	Notice    string // 페이지 상단에 표시할 완료 메시지
}

// homePageData 는 검색(홈) 페이지의 데이터.
type homePageData struct {
	basePageData
	Query     model.SearchQuery
	MinPrice  string // 폼 에코용 원문 문자열
	MaxPrice  string
	Result    *model.SearchResult
	Searched  bool // 검색을 수행했는지 (빈 결과와 초기 화면의 구분)
	SortKeys  []sortOption
	Platforms []platformOption
}

// sortOption 은 정렬 셀렉트 박스의 한 항목.
type sortOption struct {
	Value model.SortKey
	Label string
}

// platformOption 은 플랫폼 필터의 한 항목.
type platformOption struct {
	Value string
	Label string
}

// loginPageData 는 로그인 페이지의 데이터.
type loginPageData struct {
	basePageData
	UserID string // 폼 에코용
}

// registerPageData 는 가입 페이지의 데이터.
type registerPageData struct {
	basePageData
	UserID string // 폼 에코용
}

// platformsPageData 는 플랫폼 연동 페이지의 데이터.
type platformsPageData struct {
	basePageData
	Links       []model.PlatformLink
	Connectable []platformOption // 연동 폼의 플랫폼 선택지
}

// settingsPageData 는 설정(비밀번호 변경) 페이지의 데이터.
type settingsPageData struct {
	basePageData
}

// profilePageData 는 프로필 페이지의 데이터.
type profilePageData struct {
	basePageData
	PlatformCount int
}

// sortOptions 는 정렬 셀렉트 박스 항목(표시 순서 고정).
var sortOptions = []sortOption{
	{Value: model.SortPriceAsc, Label: "가격 낮은순"},
	{Value: model.SortPriceDesc, Label: "가격 높은순"},
	{Value: model.SortNameAsc, Label: "상품명 오름차순"},
	{Value: model.SortNameDesc, Label: "상품명 내림차순"},
}

// platformOptions 는 검색 필터의 플랫폼 선택지.
var platformOptions = []platformOption{
	{Value: model.PlatformAll, Label: "전체"},
	{Value: model.PlatformBunjang, Label: "번개장터"},
	{Value: model.PlatformJoongna, Label: "중고나라"},
}

// connectablePlatforms 는 연동 폼에서 고를 수 있는 플랫폼.
var connectablePlatforms = []platformOption{
	{Value: model.PlatformBunjang, Label: "번개장터"},
	{Value: model.PlatformJoongna, Label: "중고나라"},
}

// PageHandler 는 HTML 페이지의 HTTP 핸들러.
type PageHandler struct {
	searchService   SearchServiceInterface
	platformService PlatformServiceInterface
	invalidator     SessionInvalidator
	renderer        *Renderer
	config          AuthHandlerConfig
}

// NewPageHandler 는 PageHandler 를 생성한다.
func NewPageHandler(
	searchService SearchServiceInterface,
	platformService PlatformServiceInterface,
	invalidator SessionInvalidator,
	renderer *Renderer,
	config AuthHandlerConfig,
) *PageHandler {
	return &PageHandler{
		searchService:   searchService,
		platformService: platformService,
		invalidator:     invalidator,
		renderer:        renderer,
		config:          config,
	}
}

// Home 은 검색 페이지를 렌더링한다.
// GET /?query=...&platform=...&min_price=...&max_price=...&sort=...
// query 파라미터가 있으면 검색을 수행하고 결과를 함께 렌더링한다.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	q := r.URL.Query()
	data := homePageData{
		basePageData: h.baseData(w, r, "통합검색", session),
		Query: model.SearchQuery{
			Text:     strings.TrimSpace(q.Get("query")),
			Platform: q.Get("platform"),
			SortBy:   model.SortKey(q.Get("sort")),
		},
		MinPrice:  q.Get("min_price"),
		MaxPrice:  q.Get("max_price"),
		SortKeys:  sortOptions,
		Platforms: platformOptions,
	}
	if data.Query.Platform == "" {
		data.Query.Platform = model.PlatformAll
	}
	if data.Query.SortBy == "" {
		data.Query.SortBy = model.SortPriceAsc
	}

	if data.Query.Text == "" {
		h.renderer.Render(w, http.StatusOK, "home.html", data)
		return
	}

	min, err := parseOptionalPrice(data.MinPrice)
	if err != nil {
		data.Error = "최소 가격은 숫자로 입력해주세요."
		h.renderer.Render(w, http.StatusBadRequest, "home.html", data)
		return
	}
	max, err := parseOptionalPrice(data.MaxPrice)
	if err != nil {
		data.Error = "최대 가격은 숫자로 입력해주세요."
		h.renderer.Render(w, http.StatusBadRequest, "home.html", data)
		return
	}
	data.Query.MinPrice = min
	data.Query.MaxPrice = max

	result, err := h.searchService.Search(r.Context(), session.AccessToken, data.Query)
	if err != nil {
		if backend.IsUnauthorized(err) {
			h.expireSession(w, r, session.ID)
			return
		}
		slog.Warn("검색에 실패했습니다",
			slog.String("query", data.Query.Text),
			slog.String("error", err.Error()),
		)
		data.Error = displayMessage(err)
		h.renderer.Render(w, statusFor(err), "home.html", data)
		return
	}

	data.Result = result
	data.Searched = true
	h.renderer.Render(w, http.StatusOK, "home.html", data)
}

// LoginPage 는 로그인 페이지를 렌더링한다.
// GET /login
// 이미 로그인된 상태면 홈으로 보낸다.
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, http.StatusOK, "login.html", loginPageData{
		basePageData: h.baseData(w, r, "로그인", nil),
	})
}

// RegisterPage 는 가입 페이지를 렌더링한다.
// GET /register
func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, http.StatusOK, "register.html", registerPageData{
		basePageData: h.baseData(w, r, "회원가입", nil),
	})
}

// PlatformsPage 는 플랫폼 연동 페이지를 렌더링한다.
// GET /platforms
func (h *PageHandler) PlatformsPage(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	links, err := h.platformService.List(r.Context(), session.AccessToken)
	if err != nil {
		if backend.IsUnauthorized(err) {
			h.expireSession(w, r, session.ID)
			return
		}
		data := platformsPageData{
			basePageData: h.baseData(w, r, "플랫폼 연동", session),
			Connectable:  connectablePlatforms,
		}
		data.Error = displayMessage(err)
		h.renderer.Render(w, statusFor(err), "platforms.html", data)
		return
	}

	h.renderer.Render(w, http.StatusOK, "platforms.html", platformsPageData{
		basePageData: h.baseData(w, r, "플랫폼 연동", session),
		Links:        links,
		Connectable:  connectablePlatforms,
	})
}

// ConnectPlatform 은 플랫폼 연동 폼 제출을 처리한다.
// POST /platforms/connect
func (h *PageHandler) ConnectPlatform(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("platform_name")
	platformUserID := r.PostFormValue("platform_user_id")
	password := r.PostFormValue("platform_password")

	_, err := h.platformService.Connect(r.Context(), session.AccessToken, name, platformUserID, password)
	if err != nil {
		if backend.IsUnauthorized(err) {
			h.expireSession(w, r, session.ID)
			return
		}
		h.renderPlatformsWithError(w, r, session, displayMessage(err), statusFor(err))
		return
	}

	http.Redirect(w, r, "/platforms", http.StatusSeeOther)
}

// DisconnectPlatform 은 플랫폼 연동 해제를 처리한다.
// POST /platforms/disconnect
func (h *PageHandler) DisconnectPlatform(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("platform_name")
	if err := h.platformService.Disconnect(r.Context(), session.AccessToken, name); err != nil {
		if backend.IsUnauthorized(err) {
			h.expireSession(w, r, session.ID)
			return
		}
		h.renderPlatformsWithError(w, r, session, displayMessage(err), statusFor(err))
		return
	}

	http.Redirect(w, r, "/platforms", http.StatusSeeOther)
}

// SettingsPage 는 설정 페이지를 렌더링한다.
// GET /settings
func (h *PageHandler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	h.renderer.Render(w, http.StatusOK, "settings.html", settingsPageData{
		basePageData: h.baseData(w, r, "설정", session),
	})
}

// ProfilePage 는 프로필 페이지를 렌더링한다.
// GET /profile
// 연동된 플랫폼 수를 함께 표시한다. 목록 조회 실패는 0건으로 취급한다.
func (h *PageHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	count := 0
	links, err := h.platformService.List(r.Context(), session.AccessToken)
	if err != nil {
		if backend.IsUnauthorized(err) {
			h.expireSession(w, r, session.ID)
			return
		}
		slog.Warn("플랫폼 목록 조회에 실패했습니다",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
	} else {
		count = len(links)
	}

	h.renderer.Render(w, http.StatusOK, "profile.html", profilePageData{
		basePageData:  h.baseData(w, r, "프로필", session),
		PlatformCount: count,
	})
}

// renderPlatformsWithError 는 연동 목록을 다시 그리면서 에러 메시지를 함께 표시한다.
func (h *PageHandler) renderPlatformsWithError(w http.ResponseWriter, r *http.Request, session *model.Session, msg string, status int) {
	links, listErr := h.platformService.List(r.Context(), session.AccessToken)
	if listErr != nil {
		links = nil
	}
	data := platformsPageData{
		basePageData: h.baseData(w, r, "플랫폼 연동", session),
		Links:        links,
		Connectable:  connectablePlatforms,
	}
	data.Error = msg
	h.renderer.Render(w, status, "platforms.html", data)
}

// expireSession 은 백엔드 401 관측 시 세션을 정리하고 로그인 페이지로 보낸다.
func (h *PageHandler) expireSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.invalidator.InvalidateSession(r.Context(), sessionID); err != nil {
		slog.Error("세션 무효화에 실패했습니다",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
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
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// baseData 는 레이아웃 공통 데이터를 만든다.
func (h *PageHandler) baseData(w http.ResponseWriter, r *http.Request, title string, session *model.Session) basePageData {
	data := basePageData{
		Title:     title,
		CSRFToken: middleware.EnsureCSRFToken(w, r, h.config.CSRF),
	}
	if session != nil {
		data.UserID = session.UserID
		data.LoggedIn = true
	}
	return data
}

// parseOptionalPrice 는 가격 입력을 파싱한다. 빈 문자열은 nil 을 반환한다.
func parseOptionalPrice(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
