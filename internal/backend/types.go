package backend

// LoginResponse 는 POST /auth/login 응답.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse 는 /auth/register, /users/me 응답.
type UserResponse struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
}

// MessageResponse 는 message 필드 하나만 갖는 응답.
// /auth/change-password, /auth/logout, DELETE /platforms/{name} 에서 사용된다.
type MessageResponse struct {
	Message string `json:"message"`
}

// AvailabilityResponse 는 GET /auth/check/{userId} 응답.
type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// PlatformResponse 는 플랫폼 연동 한 건의 응답.
type PlatformResponse struct {
	ID             int64  `json:"id"`
	PlatformName   string `json:"platform_name"`
	PlatformUserID string `json:"platform_user_id"`
}

// ConnectPlatformRequest 는 POST /platforms/connect 요청 본문.
// 연동 계정 비밀번호는 이 요청 한 번에만 실려 보내지고 이후 보관하지 않는다.
type ConnectPlatformRequest struct {
	PlatformName   string `json:"platform_name"`
	PlatformUserID string `json:"platform_user_id"`
	Password       string `json:"password"`
}

// ItemDetail 은 검색 결과의 매물 한 건.
type ItemDetail struct {
	ItemID    string   `json:"item_id"`
	Platform  string   `json:"platform"`
	Name      string   `json:"name"`
	Price     int      `json:"price"`
	Tags      []string `json:"tags"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// SearchResponse 는 GET /items/search 응답.
type SearchResponse struct {
	Items     []ItemDetail `json:"items"`
	ItemCount int          `json:"item_count"`
	Query     string       `json:"query"`
	Platform  string       `json:"platform"`
}

// AutocompleteResponse 는 GET /items/autocomplete 응답.
type AutocompleteResponse struct {
	Keywords     []string `json:"keywords"`
	KeywordCount int      `json:"keyword_count"`
}

// SearchParams 는 GET /items/search 쿼리 파라미터.
type SearchParams struct {
	Query    string
	Platform string // "bunjang" | "joongna" | "all"
	MinPrice *int
	MaxPrice *int
}
