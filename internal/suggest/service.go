// Package suggest 는 검색어 자동완성 제안을 제공한다.
// 백엔드 자동완성 API를 우선 사용하고, 실패 시 정적 인기 검색어 목록으로 폴백한다.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/minsu/joongomoa/internal/backend"
)

const (
	// suggestionLimit 은 한 번에 보여줄 최대 제안 수.
	suggestionLimit = 5
	// minQueryLen 은 자동완성을 시도하는 최소 검색어 길이 (rune 기준).
	minQueryLen = 2
)

// fallbackKeywords 는 백엔드 호출 실패 시 사용하는 인기 검색어 목록.
var fallbackKeywords = []string{
	"아이폰",
	"갤럭시",
	"에어팟",
	"맥북",
	"아이패드",
	"닌텐도",
	"플레이스테이션",
	"애플워치",
	"노트북",
	"카메라",
	"태블릿",
	"이어폰",
	"키보드",
	"마우스",
	"모니터",
	"스피커",
	"헤드폰",
	"충전기",
	"케이스",
	"가방",
}

// BackendSuggestClient 는 제안 서비스가 필요로 하는 백엔드 호출의 인터페이스.
type BackendSuggestClient interface {
	Autocomplete(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error)
}

// Service 는 자동완성 제안 서비스.
type Service struct {
	backend BackendSuggestClient
	logger  *slog.Logger
}

// NewService 는 Service 를 생성한다.
func NewService(backendClient BackendSuggestClient, logger *slog.Logger) *Service {
	return &Service{
		backend: backendClient,
		logger:  logger,
	}
}

// Suggest 는 검색어에 대한 자동완성 키워드를 반환한다.
// 두 글자 미만의 검색어에는 빈 목록을 반환한다.
// 백엔드 호출이 실패하면 정적 목록에서 대소문자 무시 부분일치
// (양방향: 검색어가 키워드에 포함되거나 키워드가 검색어에 포함)로 최대 5건을 골라낸다.
// 에러를 반환하지 않으므로 제안 실패가 검색 UI를 막는 일은 없다.
func (s *Service) Suggest(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil
	}

	resp, err := s.backend.Autocomplete(ctx, query, suggestionLimit)
	if err != nil {
		s.logger.Warn("자동완성 API 호출에 실패해 정적 목록으로 폴백합니다",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return fallbackSuggestions(query)
	}

	keywords := resp.Keywords
	if len(keywords) > suggestionLimit {
		keywords = keywords[:suggestionLimit]
	}
	return keywords
}

// fallbackSuggestions 는 정적 목록에서 부분일치하는 키워드를 골라낸다.
func fallbackSuggestions(query string) []string {
	lowered := strings.ToLower(query)

	var matched []string
	for _, kw := range fallbackKeywords {
		kwLowered := strings.ToLower(kw)
		if strings.Contains(kwLowered, lowered) || strings.Contains(lowered, kwLowered) {
			matched = append(matched, kw)
			if len(matched) == suggestionLimit {
				break
			}
		}
	}
	return matched
}
