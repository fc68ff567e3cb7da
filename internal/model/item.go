// Package model 은 도메인 모델을 정의한다.
package model

// Item 은 백엔드 검색 결과에 포함된 중고 매물 한 건을 나타낸다.
// 백엔드 데이터의 읽기 전용 프로젝션이며, 클라이언트 측에서는 정렬 외에 변경하지 않는다.
type Item struct {
	ItemID    string
	Platform  string // "bunjang" | "joongna"
	Name      string
	Price     int
	Tags      []string
	Thumbnail string // 없을 수 있음
}

// Platform 필터 값. 백엔드 /items/search 의 platform 파라미터와 일치한다.
const (
	PlatformAll     = "all"
	PlatformBunjang = "bunjang"
	PlatformJoongna = "joongna"
)

// SortKey 는 검색 결과 정렬 기준을 나타낸다.
type SortKey string

const (
	// SortPriceAsc 는 가격 낮은순 정렬.
	SortPriceAsc SortKey = "price_asc"
	// SortPriceDesc 는 가격 높은순 정렬.
	SortPriceDesc SortKey = "price_desc"
	// SortNameAsc 는 상품명 오름차순 정렬.
	SortNameAsc SortKey = "name_asc"
	// SortNameDesc 는 상품명 내림차순 정렬.
	SortNameDesc SortKey = "name_desc"
)

// ValidSortKey 는 지원하는 정렬 기준인지 판정한다.
func ValidSortKey(k SortKey) bool {
	switch k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	default:
		return false
	}
}

// SearchQuery 는 검색 폼 한 번의 제출 내용을 나타낸다.
// 활성 페이지의 뷰 상태에만 존재하는 일시적 값이다.
type SearchQuery struct {
	Text     string
	Platform string // PlatformAll | PlatformBunjang | PlatformJoongna
	MinPrice *int
	MaxPrice *int
	SortBy   SortKey
}

// SearchResult 는 백엔드 검색 응답을 나타낸다.
type SearchResult struct {
	Items     []Item
	ItemCount int
	Query     string
	Platform  string
}

// PlatformLink 는 백엔드에 저장된 외부 마켓플레이스 계정 연동을 나타낸다.
// 연동 계정의 비밀번호는 연동 요청 한 번 이후 클라이언트에 남지 않는다.
type PlatformLink struct {
	ID             int64
	PlatformName   string
	PlatformUserID string
}

// AvailabilityState 는 아이디 사용 가능 여부 확인의 3상태를 나타낸다.
type AvailabilityState string

const (
	// AvailabilityUnknown 은 아직 확인되지 않았거나 확인에 실패한 상태.
	AvailabilityUnknown AvailabilityState = "unknown"
	// AvailabilityAvailable 은 사용 가능한 아이디로 확인된 상태.
	AvailabilityAvailable AvailabilityState = "available"
	// AvailabilityTaken 은 이미 사용 중인 아이디로 확인된 상태.
	AvailabilityTaken AvailabilityState = "taken"
)
