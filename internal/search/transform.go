package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/minsu/joongomoa/internal/model"
)

// SortItems 는 검색 결과를 정렬 기준에 따라 정렬한 새 슬라이스를 반환한다.
// 입력 슬라이스는 변경하지 않는다. 가격은 수치 비교, 상품명은 한국어 로케일
// 기준(collate) 비교를 사용한다. 안정 정렬이므로 동일 키 매물의 상대 순서는
// 입력 순서 그대로 유지된다.
func SortItems(items []model.Item, key model.SortKey) []model.Item {
	sorted := make([]model.Item, len(items))
	copy(sorted, items)

	switch key {
	case model.SortPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case model.SortPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	case model.SortNameAsc:
		c := collate.New(language.Korean)
		sort.SliceStable(sorted, func(i, j int) bool {
			return c.CompareString(sorted[i].Name, sorted[j].Name) < 0
		})
	case model.SortNameDesc:
		c := collate.New(language.Korean)
		sort.SliceStable(sorted, func(i, j int) bool {
			return c.CompareString(sorted[i].Name, sorted[j].Name) > 0
		})
	}

	return sorted
}

// PlatformBadge 는 매물 카드에 표시할 플랫폼 배지를 나타낸다.
type PlatformBadge struct {
	Name  string // 한국어 플랫폼명
	Icon  string // 로고 이미지를 불러오지 못했을 때의 대체 아이콘
	Color string // 배지 색상 클래스
}

// platformBadges 는 플랫폼 식별자 → 배지 매핑.
var platformBadges = map[string]PlatformBadge{
	model.PlatformBunjang: {
		Name:  "번개장터",
		Icon:  "⚡",
		Color: "badge-bunjang",
	},
	model.PlatformJoongna: {
		Name:  "중고나라",
		Icon:  "🏠",
		Color: "badge-joongna",
	},
	// 과거 응답에 남아 있는 전체 표기도 같은 배지로 대응한다.
	"joonggonara": {
		Name:  "중고나라",
		Icon:  "🏠",
		Color: "badge-joongna",
	},
}

// defaultBadge 는 알 수 없는 플랫폼의 배지.
var defaultBadge = PlatformBadge{
	Name:  "기타",
	Icon:  "📦",
	Color: "badge-default",
}

// BadgeFor 는 플랫폼 식별자에 대응하는 배지를 반환한다.
func BadgeFor(platform string) PlatformBadge {
	if b, ok := platformBadges[platform]; ok {
		return b
	}
	return defaultBadge
}
