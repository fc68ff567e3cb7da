package suggest

import (
	"context"
	"io"
	"testing"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/logger"
)

type mockSuggestClient struct {
	autocompleteFn func(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error)
}

func (m *mockSuggestClient) Autocomplete(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error) {
	return m.autocompleteFn(ctx, query, limit)
}

// TestService_Suggest 는 백엔드 제안이 그대로 반환되는 것을 검증한다.
func TestService_Suggest(t *testing.T) {
	client := &mockSuggestClient{
		autocompleteFn: func(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error) {
			if query != "아이폰" {
				t.Errorf("query = %q, want %q", query, "아이폰")
			}
			if limit != 5 {
				t.Errorf("limit = %d, want 5", limit)
			}
			return &backend.AutocompleteResponse{
				Keywords:     []string{"아이폰 15", "아이폰 14", "아이폰 케이스"},
				KeywordCount: 3,
			}, nil
		},
	}

	svc := NewService(client, logger.Setup(io.Discard))

	got := svc.Suggest(context.Background(), "아이폰")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != "아이폰 15" {
		t.Errorf("keywords[0] = %q, want %q", got[0], "아이폰 15")
	}
}

// TestService_Suggest_ShortQuery 는 두 글자 미만의 검색어에
// 백엔드 호출 없이 빈 목록이 반환되는 것을 검증한다.
func TestService_Suggest_ShortQuery(t *testing.T) {
	client := &mockSuggestClient{
		autocompleteFn: func(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error) {
			t.Error("backend should not be called for short query")
			return nil, nil
		},
	}

	svc := NewService(client, logger.Setup(io.Discard))

	for _, q := range []string{"", "아", "a", "  아  "} {
		if got := svc.Suggest(context.Background(), q); got != nil {
			t.Errorf("Suggest(%q) = %v, want nil", q, got)
		}
	}
}

// TestService_Suggest_CapsAtLimit 은 백엔드가 한도를 넘는 제안을 돌려줘도
// 5건으로 잘리는 것을 검증한다.
func TestService_Suggest_CapsAtLimit(t *testing.T) {
	client := &mockSuggestClient{
		autocompleteFn: func(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error) {
			return &backend.AutocompleteResponse{
				Keywords: []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"},
			}, nil
		},
	}

	svc := NewService(client, logger.Setup(io.Discard))

	if got := svc.Suggest(context.Background(), "아이폰"); len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

// TestService_Suggest_FallbackOnBackendFailure 는 백엔드 실패 시
// 정적 목록의 부분일치로 폴백하는 것을 검증한다.
func TestService_Suggest_FallbackOnBackendFailure(t *testing.T) {
	client := &mockSuggestClient{
		autocompleteFn: func(ctx context.Context, query string, limit int) (*backend.AutocompleteResponse, error) {
			return nil, &backend.Error{Status: 0, Message: "서버에 연결할 수 없습니다"}
		},
	}

	svc := NewService(client, logger.Setup(io.Discard))

	// "아이" 는 "아이폰", "아이패드" 에 부분일치
	got := svc.Suggest(context.Background(), "아이")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (아이폰, 아이패드), got %v", len(got), got)
	}
	if got[0] != "아이폰" || got[1] != "아이패드" {
		t.Errorf("keywords = %v, want [아이폰 아이패드]", got)
	}
}

// TestFallbackSuggestions 는 정적 폴백의 매칭 규칙을 검증한다.
func TestFallbackSuggestions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"검색어가 키워드에 포함", "맥북", []string{"맥북"}},
		{"키워드가 검색어에 포함 (양방향)", "갤럭시 S24 울트라", []string{"갤럭시"}},
		{"일치 없음", "피아노", nil},
		{"최대 5건 제한", "이", []string{"아이폰", "아이패드", "플레이스테이션", "이어폰", "케이스"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackSuggestions(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (got %v)", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("keywords[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
