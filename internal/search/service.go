// Package search 는 매물 검색과 결과 변환(정렬, 배지, 정화)을 제공한다.
package search

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/model"
)

// BackendSearchClient 는 검색 서비스가 필요로 하는 백엔드 호출의 인터페이스.
type BackendSearchClient interface {
	SearchItems(ctx context.Context, token string, params backend.SearchParams) (*backend.SearchResponse, error)
}

// Service 는 매물 검색 서비스.
// 백엔드 응답의 상품명과 태그는 외부 마켓플레이스에서 수집된 텍스트이므로
// 렌더링 전에 마크업을 전부 제거한다.
type Service struct {
	backend   BackendSearchClient
	sanitizer *bluemonday.Policy
	metrics   metrics.MetricsCollector
}

// NewService 는 Service 를 생성한다.
func NewService(backendClient BackendSearchClient, collector metrics.MetricsCollector) *Service {
	return &Service{
		backend:   backendClient,
		sanitizer: bluemonday.StrictPolicy(),
		metrics:   collector,
	}
}

// Search 는 검색 조건을 검증한 뒤 백엔드를 호출하고 정렬된 결과를 반환한다.
// 가격 범위, 플랫폼 필터는 사용자가 지정한 값 그대로 백엔드에 전달된다.
func (s *Service) Search(ctx context.Context, token string, query model.SearchQuery) (*model.SearchResult, error) {
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" {
		return nil, model.NewEmptyQueryError()
	}

	if query.Platform == "" {
		query.Platform = model.PlatformAll
	}
	if !model.ValidSortKey(query.SortBy) {
		query.SortBy = model.SortPriceAsc
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		return nil, model.NewInvalidPriceRangeError()
	}

	resp, err := s.backend.SearchItems(ctx, token, backend.SearchParams{
		Query:    query.Text,
		Platform: query.Platform,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSearch(query.Platform)

	items := make([]model.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, s.toItem(it))
	}

	return &model.SearchResult{
		Items:     SortItems(items, query.SortBy),
		ItemCount: resp.ItemCount,
		Query:     resp.Query,
		Platform:  resp.Platform,
	}, nil
}

// toItem 은 백엔드 응답의 매물을 도메인 모델로 변환한다.
// 텍스트 필드는 마크업 제거 후 보관한다.
func (s *Service) toItem(d backend.ItemDetail) model.Item {
	tags := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, s.sanitizer.Sanitize(t))
	}

	return model.Item{
		ItemID:    d.ItemID,
		Platform:  d.Platform,
		Name:      s.sanitizer.Sanitize(d.Name),
		Price:     d.Price,
		Tags:      tags,
		Thumbnail: d.Thumbnail,
	}
}
