package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/vasantisuthar/journal/internal/blog"
	"github.com/vasantisuthar/journal/internal/middleware"
	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/view"
)

// BlogServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
// 全ての操作はuserIDの所有する記事に限定される。
type BlogServiceInterface interface {
	Create(ctx context.Context, userID, title, post string) (*model.Blog, error)
	List(ctx context.Context, userID string) ([]*model.Blog, error)
	FindByTitle(ctx context.Context, userID, title string) (*model.Blog, error)
	Search(ctx context.Context, userID, query string) (*model.Blog, error)
	Get(ctx context.Context, userID, id string) (*model.Blog, error)
	Update(ctx context.Context, userID, id, title, post string) (*model.Blog, error)
	Delete(ctx context.Context, userID, id string) error
}

// BlogHandler は記事の一覧・作成・閲覧・検索・編集・削除のHTTPハンドラー。
type BlogHandler struct {
	pages
	service BlogServiceInterface
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface, renderer PageRenderer) *BlogHandler {
	return &BlogHandler{
		pages:   pages{renderer: renderer},
		service: service,
	}
}

// List はログインユーザーの記事一覧を新しい順に表示する。
// GET /blogs
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	blogs, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageBlogs, &view.PageData{Title: "My Journal", Blogs: blogs})
}

// Compose は記事作成画面を表示する。
// GET /compose
func (h *BlogHandler) Compose(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}
	h.render(w, r, http.StatusOK, view.PageCompose, &view.PageData{Title: "Compose"})
}

// Create は記事を作成して一覧にリダイレクトする。
// 所有者は常にログインユーザーであり、フォームからは受け付けない。
// POST /blogs
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	title := r.PostFormValue("title")
	post := r.PostFormValue("post")

	if _, err := h.service.Create(r.Context(), userID, title, post); err != nil {
		if appErr, ok := blogFormError(err); ok {
			h.render(w, r, http.StatusBadRequest, view.PageCompose, &view.PageData{
				Title: "Compose",
				Blog:  &model.Blog{Title: title, Post: post},
				Error: appErr,
			})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/blogs", http.StatusFound)
}

// Search は作成時と同じ正規化をした検索語で記事を探す。
// 見つからない場合は一覧にリダイレクトする。
// POST /search
func (h *BlogHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Search(r.Context(), userID, r.PostFormValue("search"))
	if errors.Is(err, model.ErrNotFound) {
		http.Redirect(w, r, "/blogs", http.StatusFound)
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.renderPost(w, r, entry)
}

// ViewPost はタイトル完全一致で記事を表示する。
// GET /post/{title}
func (h *BlogHandler) ViewPost(w http.ResponseWriter, r *http.Request) {
	h.viewByTitle(w, r, "title")
}

// ViewLegacy は旧URL形式（/{titleName}）で記事を表示する。
// 他の全ルートより後に登録され、固定パスとは衝突しない。
// GET /{titleName}
func (h *BlogHandler) ViewLegacy(w http.ResponseWriter, r *http.Request) {
	h.viewByTitle(w, r, "titleName")
}

func (h *BlogHandler) viewByTitle(w http.ResponseWriter, r *http.Request, param string) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.FindByTitle(r.Context(), userID, titleParam(r, param))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.renderPost(w, r, entry)
}

// Delete は記事を削除して一覧にリダイレクトする。
// 対象が存在しない場合も一覧にリダイレクトする。
// POST /delete
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PostFormValue("blog")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/blogs", http.StatusFound)
}

// EditForm は編集画面を表示する。
// IDはGETではクエリパラメータid、POSTではフォームフィールドblogで受け取る。
// IDが指定されない場合は空の編集画面を表示する。
// GET /edit?id=xxx, POST /edit
func (h *BlogHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if r.Method == http.MethodPost {
		id = r.PostFormValue("blog")
	}

	data := &view.PageData{Title: "Edit"}
	if id != "" {
		entry, err := h.service.Get(r.Context(), userID, id)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		data.Blog = entry
	}

	h.render(w, r, http.StatusOK, view.PageEdit, data)
}

// Update は記事のタイトルと本文を更新して一覧にリダイレクトする。
// 対象が存在しない場合も削除と同じく一覧にリダイレクトする。
// POST /updateBlog
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id := r.PostFormValue("id")
	title := r.PostFormValue("title")
	post := r.PostFormValue("post")

	_, err := h.service.Update(r.Context(), userID, id, title, post)
	if appErr, ok := blogFormError(err); ok {
		h.render(w, r, http.StatusBadRequest, view.PageEdit, &view.PageData{
			Title: "Edit",
			Blog:  &model.Blog{ID: id, Title: title, Post: post},
			Error: appErr,
		})
		return
	}
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/blogs", http.StatusFound)
}

// blogFormError は入力画面に戻して表示すべきエラーであればAppErrorを返す。
func blogFormError(err error) (*model.AppError, bool) {
	switch {
	case err == nil:
		return nil, false
	case errors.Is(err, model.ErrEmptyTitle):
		return model.NewEmptyTitleError(), true
	case errors.Is(err, blog.ErrTitleTooLong):
		return model.NewInvalidInputError(fmt.Sprintf("the title must be %d characters or fewer", blog.MaxTitleLength)), true
	case errors.Is(err, model.ErrInvalidInput):
		return model.NewInvalidInputError("the title and post must not contain control or malformed characters"), true
	default:
		return nil, false
	}
}

func (h *BlogHandler) renderPost(w http.ResponseWriter, r *http.Request, entry *model.Blog) {
	h.render(w, r, http.StatusOK, view.PagePost, &view.PageData{Title: entry.Title, Blog: entry})
}

// requireUserID はログインユーザーのIDを返す。
// 匿名リクエストの場合はログイン画面にリダイレクトしてfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return "", false
	}
	return userID, true
}

// titleParam はURLパラメータからタイトルを取り出す。
// chiはエスケープされたパス（RawPath）がある場合はそれでマッチするため、その場合のみデコードする。
func titleParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value
	}
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}
