// Package handler 는 HTTP 핸들러와 화면 렌더링을 제공한다.
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/minsu/joongomoa/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer 는 임베드된 HTML 템플릿을 렌더링한다.
// 모든 페이지는 base.html 레이아웃을 공유한다.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// templateFuncs 는 템플릿에서 사용하는 헬퍼 함수.
var templateFuncs = template.FuncMap{
	"formatPrice": formatPrice,
	"badgeFor":    search.BadgeFor,
}

// pageTemplates 는 base.html 과 조합되는 페이지 템플릿 목록.
var pageTemplates = []string{
	"home.html",
	"login.html",
	"register.html",
	"platforms.html",
	"settings.html",
	"profile.html",
}

// NewRenderer 는 임베드된 템플릿을 파싱해 Renderer 를 생성한다.
// 템플릿 파싱 실패는 프로그래밍 오류이므로 패닉한다.
func NewRenderer(logger *slog.Logger) *Renderer {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		t := template.Must(
			template.New("base.html").Funcs(templateFuncs).
				ParseFS(templateFS, "templates/base.html", "templates/"+name),
		)
		templates[name] = t
	}
	return &Renderer{
		templates: templates,
		logger:    logger,
	}
}

// Render 는 지정 페이지 템플릿을 렌더링한다.
// 렌더링에 실패해도 상태 코드는 이미 전송되었을 수 있으므로 로그만 남긴다.
func (rn *Renderer) Render(w http.ResponseWriter, statusCode int, name string, data any) {
	t, ok := rn.templates[name]
	if !ok {
		rn.logger.Error("알 수 없는 템플릿입니다", slog.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		rn.logger.Error("템플릿 렌더링에 실패했습니다",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

// formatPrice 는 가격을 "1,234,567원" 형식의 문자열로 변환한다.
func formatPrice(price int) string {
	s := strconv.Itoa(price)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}

	result := string(out)
	if neg {
		result = "-" + result
	}
	return result + "원"
}
