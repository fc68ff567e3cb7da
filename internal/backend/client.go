// Package backend 는 마켓플레이스 통합검색 백엔드 REST API 클라이언트를 제공한다.
// 엔드포인트별 메서드 하나씩을 노출하고, 실패를 사용자용 한국어 메시지와
// HTTP 상태 코드를 담은 통일 에러 값으로 정규화한다.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/minsu/joongomoa/internal/metrics"
)

// Client 는 백엔드 API 클라이언트.
// 인증이 필요한 호출은 세션에 보관된 bearer 토큰을 인자로 받아 요청마다 첨부한다.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	baseURL    string // 테스트에서 httptest 서버 주소로 교체 가능
}

// NewClient 는 Client 의 새 인스턴스를 생성한다.
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CheckUserID 는 아이디 사용 가능 여부를 조회한다.
// GET /auth/check/{userId}
// 백엔드가 소문자로 정규화해 비교하므로 여기서도 소문자로 보낸다.
func (c *Client) CheckUserID(ctx context.Context, userID string) (*AvailabilityResponse, error) {
	path := "/auth/check/" + url.PathEscape(strings.ToLower(userID))
	out := &AvailabilityResponse{}
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login 은 로그인하여 bearer 토큰을 발급받는다.
// POST /auth/login (form-encoded, OAuth2 password flow 형식)
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("HTTP 요청 생성에 실패했습니다: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	out := &LoginResponse{}
	if err := c.do(req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register 는 신규 계정을 등록한다.
// POST /auth/register
func (c *Client) Register(ctx context.Context, userID, password string) (*UserResponse, error) {
	body := map[string]string{"user_id": userID, "password": password}
	out := &UserResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePassword 는 비밀번호를 변경한다.
// POST /auth/change-password (bearer 토큰 필요)
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) (*MessageResponse, error) {
	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}
	out := &MessageResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/change-password", token, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logout 은 백엔드에 토큰 무효화를 요청한다.
// POST /auth/logout (bearer 토큰 필요)
func (c *Client) Logout(ctx context.Context, token string) (*MessageResponse, error) {
	out := &MessageResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCurrentUser 는 현재 로그인한 사용자 정보를 조회한다.
// GET /users/me (bearer 토큰 필요)
func (c *Client) GetCurrentUser(ctx context.Context, token string) (*UserResponse, error) {
	out := &UserResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectPlatform 은 외부 마켓플레이스 계정을 연동한다.
// POST /platforms/connect (bearer 토큰 필요)
func (c *Client) ConnectPlatform(ctx context.Context, token string, reqBody ConnectPlatformRequest) (*PlatformResponse, error) {
	out := &PlatformResponse{}
	if err := c.doJSON(ctx, http.MethodPost, "/platforms/connect", token, reqBody, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPlatforms 는 연동된 플랫폼 목록을 조회한다.
// GET /platforms/ (bearer 토큰 필요)
func (c *Client) ListPlatforms(ctx context.Context, token string) ([]PlatformResponse, error) {
	var out []PlatformResponse
	if err := c.doJSON(ctx, http.MethodGet, "/platforms/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DisconnectPlatform 은 플랫폼 연동을 해제한다.
// DELETE /platforms/{name} (bearer 토큰 필요)
func (c *Client) DisconnectPlatform(ctx context.Context, token, platformName string) (*MessageResponse, error) {
	path := "/platforms/" + url.PathEscape(platformName)
	out := &MessageResponse{}
	if err := c.doJSON(ctx, http.MethodDelete, path, token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchItems 는 매물을 검색한다.
// GET /items/search (bearer 토큰 필요)
// min_price, max_price 는 지정된 경우에만 파라미터로 실린다.
func (c *Client) SearchItems(ctx context.Context, token string, params SearchParams) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("query", params.Query)
	q.Set("platform", params.Platform)
	if params.MinPrice != nil {
		q.Set("min_price", strconv.Itoa(*params.MinPrice))
	}
	if params.MaxPrice != nil {
		q.Set("max_price", strconv.Itoa(*params.MaxPrice))
	}

	out := &SearchResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/items/search?"+q.Encode(), token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Autocomplete 는 검색어 자동완성 키워드를 조회한다.
// GET /items/autocomplete
func (c *Client) Autocomplete(ctx context.Context, query string, limit int) (*AutocompleteResponse, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))

	out := &AutocompleteResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/items/autocomplete?"+q.Encode(), "", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// doJSON 은 JSON 본문의 요청을 만들어 실행한다.
// token 이 비어 있지 않으면 Authorization: Bearer 헤더를 첨부한다.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("요청 본문 인코딩에 실패했습니다: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("HTTP 요청 생성에 실패했습니다: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, out)
}

// do 는 요청을 실행하고 응답을 정규화한다.
// 멱등한 GET 요청은 일시적 실패(네트워크, 429, 5xx)에 한해
// 지수 백오프로 재시도한다.
func (c *Client) do(req *http.Request, out any) error {
	attempts := 1
	if req.Method == http.MethodGet {
		attempts = maxRetries + 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-req.Context().Done():
				return &Error{Status: 0, Message: unreachableMessage}
			case <-time.After(backoffDelay(i - 1)):
			}
			c.logger.Info("백엔드 호출을 재시도합니다",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("attempt", i+1),
			)
		}

		err = c.doOnce(req, out)
		if err == nil || !retryableError(err) {
			return err
		}
	}
	return err
}

// doOnce 는 요청을 1회 실행한다.
// 2xx 응답은 out 으로 디코딩하고, 그 외는 *Error 로 변환한다.
func (c *Client) doOnce(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency(req.URL.Path, time.Since(start))
	if err != nil {
		c.metrics.RecordBackendCall(req.URL.Path, 0)
		c.logger.Error("백엔드 호출에 실패했습니다",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		return &Error{Status: 0, Message: unreachableMessage}
	}
	defer resp.Body.Close()
	c.metrics.RecordBackendCall(req.URL.Path, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("응답 본문 읽기에 실패했습니다",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		return &Error{Status: resp.StatusCode, Message: genericErrorMessage}
	}

	if resp.StatusCode >= 400 {
		return c.normalizeError(req, resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Error("백엔드 응답 파싱에 실패했습니다",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		return &Error{Status: resp.StatusCode, Message: genericErrorMessage}
	}

	return nil
}

// errorPayload 는 백엔드 에러 응답 본문의 형태.
// FastAPI 계열은 detail, 그 외는 message 필드를 사용한다.
type errorPayload struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// normalizeError 는 에러 응답을 *Error 로 정규화한다.
// detail → message → 본문 문자열 순으로 메시지를 추출해 번역 테이블을 적용하고,
// 5xx 는 서버 오류 일반 문구로 대체한다.
func (c *Client) normalizeError(req *http.Request, status int, body []byte) error {
	c.logger.Warn("백엔드가 에러 상태를 반환했습니다",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("http_status", status),
	)

	if status >= 500 {
		return &Error{Status: status, Message: serverErrorMessage}
	}

	var payload errorPayload
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			detail = payload.Detail
		} else if payload.Message != "" {
			detail = payload.Message
		}
	}
	if detail == "" {
		var raw string
		if err := json.Unmarshal(body, &raw); err == nil {
			detail = raw
		}
	}

	return &Error{Status: status, Message: translate(detail)}
}
