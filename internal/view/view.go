// Package view は画面のHTMLテンプレートを描画する。
//
// テンプレートはバイナリに埋め込み、起動時に一度だけパースする。
// 各ページはlayout.htmlの"content"ブロックを定義する。
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/security"
)

//go:embed templates/*.html
var templateFS embed.FS

// DateLayout は画面に表示する日付の書式（例: October 18, 2026）。
const DateLayout = "January 2, 2006"

// ページ名。templates/<name>.html に対応する。
const (
	PageIndex   = "index"
	PageSignup  = "signup"
	PageLogin   = "login"
	PageBlogs   = "blogs"
	PageCompose = "compose"
	PagePost    = "post"
	PageEdit    = "edit"
	PageError   = "error"
)

var pageNames = []string{
	PageIndex, PageSignup, PageLogin, PageBlogs,
	PageCompose, PagePost, PageEdit, PageError,
}

// PageData はテンプレートに渡す値。
type PageData struct {
	Title     string
	User      *model.User
	CSRFToken string
	Day       string

	Blogs []*model.Blog
	Blog  *model.Blog

	Error *model.AppError
}

// Renderer はページテンプレートを保持し、HTMLを描画する。
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// NewRenderer は埋め込みテンプレートをパースしてRendererを生成する。
func NewRenderer(sanitizer security.ContentSanitizerService) (*Renderer, error) {
	funcs := template.FuncMap{
		"renderPost": func(body string) template.HTML {
			return template.HTML(sanitizer.RenderPost(body))
		},
		"formatDate": func(t time.Time) string {
			return t.Format(DateLayout)
		},
		"excerpt":    excerpt,
		"pathEscape": url.PathEscape,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, now: time.Now}, nil
}

// Render はページを描画してレスポンスに書き込む。
// テンプレート実行の失敗で中途半端なHTMLを返さないよう、バッファに描画してから書き込む。
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page: %s", page)
	}
	if data == nil {
		data = &PageData{}
	}
	if data.Day == "" {
		data.Day = r.now().Format(DateLayout)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write response body", slog.String("error", err.Error()))
	}
	return nil
}

const excerptLength = 100

// excerpt は一覧表示用に本文の先頭を切り出す。
func excerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= excerptLength {
		return body
	}
	return string(runes[:excerptLength]) + "..."
}
