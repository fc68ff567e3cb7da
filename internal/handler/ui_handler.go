package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/minsu/joongomoa/internal/auth"
	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/debounce"
	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/middleware"
	"github.com/minsu/joongomoa/internal/model"
)

// SuggestServiceInterface 는 자동완성 핸들러가 필요로 하는 서비스 인터페이스.
type SuggestServiceInterface interface {
	Suggest(ctx context.Context, query string) []string
}

// IDCheckClient 는 아이디 중복 확인에 필요한 백엔드 호출의 인터페이스.
type IDCheckClient interface {
	CheckUserID(ctx context.Context, userID string) (*backend.AvailabilityResponse, error)
}

// UIHandler 는 페이지 스크립트가 호출하는 JSON 엔드포인트의 핸들러.
// 키 입력마다 호출되는 엔드포인트는 브라우저(세션 또는 IP) 단위로 디바운스되며,
// 대기 중에 새 입력이 도착하면 이전 요청은 응답 없이 폐기된다.
type UIHandler struct {
	suggestService     SuggestServiceInterface
	idCheckClient      IDCheckClient
	autocompleteBounce *debounce.Debouncer
	idCheckBounce      *debounce.Debouncer
	metrics            metrics.MetricsCollector
}

// NewUIHandler 는 UIHandler 를 생성한다.
func NewUIHandler(
	suggestService SuggestServiceInterface,
	idCheckClient IDCheckClient,
	autocompleteBounce *debounce.Debouncer,
	idCheckBounce *debounce.Debouncer,
	collector metrics.MetricsCollector,
) *UIHandler {
	return &UIHandler{
		suggestService:     suggestService,
		idCheckClient:      idCheckClient,
		autocompleteBounce: autocompleteBounce,
		idCheckBounce:      idCheckBounce,
		metrics:            collector,
	}
}

// autocompleteResponse 는 자동완성 엔드포인트의 응답.
// 어느 입력에 대한 응답인지 식별할 수 있도록 원래의 query 를 함께 돌려준다.
// 페이지 스크립트는 현재 입력과 다른 query 의 응답을 폐기한다.
type autocompleteResponse struct {
	Query        string   `json:"query"`
	Keywords     []string `json:"keywords"`
	KeywordCount int      `json:"keyword_count"`
}

// Autocomplete 는 검색어 자동완성 키워드를 반환한다.
// GET /ui/autocomplete?query=...
// 같은 브라우저의 연속 입력은 디바운스되어 마지막 입력만 처리된다.
// 폐기된 요청은 204 를 반환한다.
func (h *UIHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	if err := h.autocompleteBounce.Wait(r.Context(), debounceKey(r, "autocomplete")); err != nil {
		if errors.Is(err, debounce.ErrSuperseded) {
			h.metrics.RecordDebounceSuperseded("autocomplete")
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	keywords := h.suggestService.Suggest(r.Context(), query)

	writeJSON(w, http.StatusOK, autocompleteResponse{
		Query:        query,
		Keywords:     keywords,
		KeywordCount: len(keywords),
	})
}

// checkIDResponse 는 아이디 중복 확인 엔드포인트의 응답.
type checkIDResponse struct {
	UserID  string                  `json:"user_id"`
	State   model.AvailabilityState `json:"state"`
	Message string                  `json:"message"`
}

// CheckID 는 아이디 사용 가능 여부를 반환한다.
// GET /ui/check-id?user_id=...
// 형식이 올바르지 않은 아이디는 백엔드 호출 없이 거부한다.
// 백엔드 확인에 실패한 경우 상태는 unknown 이고, 가입 페이지는 available 이 아닌
// 상태에서는 제출 버튼을 비활성화한다.
func (h *UIHandler) CheckID(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	if err := auth.ValidateUserID(userID); err != nil {
		writeJSON(w, http.StatusOK, checkIDResponse{
			UserID:  userID,
			State:   model.AvailabilityUnknown,
			Message: displayMessage(err),
		})
		return
	}

	if err := h.idCheckBounce.Wait(r.Context(), debounceKey(r, "check_id")); err != nil {
		if errors.Is(err, debounce.ErrSuperseded) {
			h.metrics.RecordDebounceSuperseded("check_id")
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp, err := h.idCheckClient.CheckUserID(r.Context(), userID)
	if err != nil {
		slog.Warn("아이디 확인에 실패했습니다",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, checkIDResponse{
			UserID:  userID,
			State:   model.AvailabilityUnknown,
			Message: "확인에 실패했습니다. 잠시 후 다시 시도해주세요.",
		})
		return
	}

	state := model.AvailabilityTaken
	message := "이미 사용 중인 아이디입니다"
	if resp.Available {
		state = model.AvailabilityAvailable
		message = "사용 가능한 아이디입니다"
	}
	if resp.Message != "" {
		message = resp.Message
	}

	writeJSON(w, http.StatusOK, checkIDResponse{
		UserID:  userID,
		State:   state,
		Message: message,
	})
}

// debounceKey 는 디바운스의 키를 결정한다.
// 세션이 있으면 세션 ID, 없으면 원격 IP 를 사용한다 (가입 페이지는 비로그인 상태).
func debounceKey(r *http.Request, kind string) string {
	if session := middleware.SessionFromContext(r.Context()); session != nil {
		return kind + ":" + session.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return kind + ":" + host
}

// writeJSON 은 JSON 응답을 쓴다.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("JSON 응답 인코딩에 실패했습니다", slog.String("error", err.Error()))
	}
}
