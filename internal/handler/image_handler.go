package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minsu/joongomoa/internal/security"
)

// maxThumbnailSize 는 프록시가 전달하는 썸네일의 최대 크기 (5MB).
const maxThumbnailSize = 5 * 1024 * 1024

// ImageHandler 는 매물 썸네일의 프록시 핸들러.
// 외부 마켓플레이스의 이미지 URL 을 서버 측에서 대신 가져와 전달한다.
// SSRF 방지를 위해 URL 을 사전 검증하고, 요청은 안전한 클라이언트로만 보낸다.
type ImageHandler struct {
	guard  security.SSRFGuardService
	client *http.Client
}

// NewImageHandler 는 ImageHandler 를 생성한다.
// client 는 guard.NewSafeClient 로 만든 SSRF 방지 클라이언트를 전달한다.
func NewImageHandler(guard security.SSRFGuardService, client *http.Client) *ImageHandler {
	return &ImageHandler{
		guard:  guard,
		client: client,
	}
}

// Proxy 는 썸네일 이미지를 가져와 전달한다.
// GET /img?url=...
// 이미지가 아닌 콘텐츠, 과대한 콘텐츠, 차단 대상 URL 은 거부한다.
func (h *ImageHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "url parameter is required", http.StatusBadRequest)
		return
	}

	if err := h.guard.ValidateURL(rawURL); err != nil {
		slog.Warn("차단 대상 썸네일 URL 입니다",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		http.Error(w, "invalid image url", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		http.Error(w, "invalid image url", http.StatusBadRequest)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Warn("썸네일 취득에 실패했습니다",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		http.Error(w, "failed to fetch image", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.Error(w, "failed to fetch image", http.StatusBadGateway)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "not an image", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	// 크기 상한을 넘는 본문은 잘라서 전달을 중단한다
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxThumbnailSize)); err != nil {
		slog.Warn("썸네일 전송이 중단되었습니다",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
	}
}
