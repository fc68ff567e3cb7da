package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/debounce"
	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/model"
)

// mockSuggestService 는 테스트용 SuggestServiceInterface 구현.
type mockSuggestService struct {
	suggestFn func(ctx context.Context, query string) []string
}

func (m *mockSuggestService) Suggest(ctx context.Context, query string) []string {
	return m.suggestFn(ctx, query)
}

// mockIDCheckClient 는 테스트용 IDCheckClient 구현.
type mockIDCheckClient struct {
	checkUserIDFn func(ctx context.Context, userID string) (*backend.AvailabilityResponse, error)
}

func (m *mockIDCheckClient) CheckUserID(ctx context.Context, userID string) (*backend.AvailabilityResponse, error) {
	return m.checkUserIDFn(ctx, userID)
}

func newTestUIHandler(suggest *mockSuggestService, idCheck *mockIDCheckClient) *UIHandler {
	return NewUIHandler(
		suggest,
		idCheck,
		debounce.New(1*time.Millisecond),
		debounce.New(1*time.Millisecond),
		metrics.NopCollector{},
	)
}

// TestUIHandler_Autocomplete 는 자동완성 응답에 원래의 query 가
// 에코되는지 검증한다.
func TestUIHandler_Autocomplete(t *testing.T) {
	suggest := &mockSuggestService{
		suggestFn: func(ctx context.Context, query string) []string {
			if query != "아이폰" {
				t.Errorf("query = %q, want %q", query, "아이폰")
			}
			return []string{"아이폰", "아이폰 14"}
		},
	}
	h := newTestUIHandler(suggest, &mockIDCheckClient{})

	req := httptest.NewRequest(http.MethodGet, "/ui/autocomplete?query=아이폰", nil)
	w := httptest.NewRecorder()

	h.Autocomplete(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body struct {
		Query        string   `json:"query"`
		Keywords     []string `json:"keywords"`
		KeywordCount int      `json:"keyword_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Query != "아이폰" {
		t.Errorf("Query = %q, want %q", body.Query, "아이폰")
	}
	if body.KeywordCount != 2 || len(body.Keywords) != 2 {
		t.Errorf("KeywordCount = %d, Keywords = %v, want 2 keywords", body.KeywordCount, body.Keywords)
	}
}

// TestUIHandler_Autocomplete_Superseded 는 대기 중에 새 요청이 도착하면
// 이전 요청이 204 로 폐기되는지 검증한다.
func TestUIHandler_Autocomplete_Superseded(t *testing.T) {
	suggest := &mockSuggestService{
		suggestFn: func(ctx context.Context, query string) []string {
			return []string{query}
		},
	}
	h := NewUIHandler(
		suggest,
		&mockIDCheckClient{},
		debounce.New(50*time.Millisecond),
		debounce.New(1*time.Millisecond),
		metrics.NopCollector{},
	)

	first := httptest.NewRecorder()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodGet, "/ui/autocomplete?query=아", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		h.Autocomplete(first, req)
	}()

	// 첫 요청이 디바운스 대기에 들어간 뒤 새 입력을 보낸다
	time.Sleep(10 * time.Millisecond)
	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/autocomplete?query=아이", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	h.Autocomplete(second, req)
	wg.Wait()

	if first.Result().StatusCode != http.StatusNoContent {
		t.Errorf("first status = %d, want %d", first.Result().StatusCode, http.StatusNoContent)
	}
	if second.Result().StatusCode != http.StatusOK {
		t.Errorf("second status = %d, want %d", second.Result().StatusCode, http.StatusOK)
	}

	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(second.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Query != "아이" {
		t.Errorf("surviving Query = %q, want %q", body.Query, "아이")
	}
}

// TestUIHandler_CheckID_Available 은 사용 가능한 아이디의 응답 상태를 검증한다.
func TestUIHandler_CheckID_Available(t *testing.T) {
	idCheck := &mockIDCheckClient{
		checkUserIDFn: func(ctx context.Context, userID string) (*backend.AvailabilityResponse, error) {
			if userID != "minsu" {
				t.Errorf("userID = %q, want %q", userID, "minsu")
			}
			return &backend.AvailabilityResponse{Available: true}, nil
		},
	}
	h := newTestUIHandler(&mockSuggestService{}, idCheck)

	req := httptest.NewRequest(http.MethodGet, "/ui/check-id?user_id=minsu", nil)
	w := httptest.NewRecorder()

	h.CheckID(w, req)

	var body struct {
		UserID  string `json:"user_id"`
		State   string `json:"state"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.State != string(model.AvailabilityAvailable) {
		t.Errorf("State = %q, want %q", body.State, model.AvailabilityAvailable)
	}
	if body.Message != "사용 가능한 아이디입니다" {
		t.Errorf("Message = %q", body.Message)
	}
}

// TestUIHandler_CheckID_Taken 은 사용 중인 아이디의 응답 상태를 검증한다.
func TestUIHandler_CheckID_Taken(t *testing.T) {
	idCheck := &mockIDCheckClient{
		checkUserIDFn: func(ctx context.Context, userID string) (*backend.AvailabilityResponse, error) {
			return &backend.AvailabilityResponse{Available: false}, nil
		},
	}
	h := newTestUIHandler(&mockSuggestService{}, idCheck)

	req := httptest.NewRequest(http.MethodGet, "/ui/check-id?user_id=minsu", nil)
	w := httptest.NewRecorder()

	h.CheckID(w, req)

	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.State != string(model.AvailabilityTaken) {
		t.Errorf("State = %q, want %q", body.State, model.AvailabilityTaken)
	}
}

// TestUIHandler_CheckID_InvalidFormat_NoBackendCall 은 형식이 잘못된 아이디가
// 백엔드 호출 없이 unknown 으로 응답되는지 검증한다.
func TestUIHandler_CheckID_InvalidFormat_NoBackendCall(t *testing.T) {
	idCheck := &mockIDCheckClient{
		checkUserIDFn: func(ctx context.Context, userID string) (*backend.AvailabilityResponse, error) {
			t.Fatal("CheckUserID should not be called for invalid format")
			return nil, nil
		},
	}
	h := newTestUIHandler(&mockSuggestService{}, idCheck)

	req := httptest.NewRequest(http.MethodGet, "/ui/check-id?user_id=한글아이디", nil)
	w := httptest.NewRecorder()

	h.CheckID(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body struct {
		State   string `json:"state"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.State != string(model.AvailabilityUnknown) {
		t.Errorf("State = %q, want %q", body.State, model.AvailabilityUnknown)
	}
	if body.Message == "" {
		t.Error("validation message missing")
	}
}

// TestUIHandler_CheckID_BackendFailure_Unknown 은 백엔드 확인 실패 시
// 상태가 unknown 으로 내려가는지 검증한다.
func TestUIHandler_CheckID_BackendFailure_Unknown(t *testing.T) {
	idCheck := &mockIDCheckClient{
		checkUserIDFn: func(ctx context.Context, userID string) (*backend.AvailabilityResponse, error) {
			return nil, &backend.Error{Status: 0, Message: "network error"}
		},
	}
	h := newTestUIHandler(&mockSuggestService{}, idCheck)

	req := httptest.NewRequest(http.MethodGet, "/ui/check-id?user_id=minsu", nil)
	w := httptest.NewRecorder()

	h.CheckID(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.State != string(model.AvailabilityUnknown) {
		t.Errorf("State = %q, want %q", body.State, model.AvailabilityUnknown)
	}
}
