package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vasantisuthar/journal/internal/middleware"
	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/view"
)

// PageRenderer はハンドラーが必要とする画面描画インターフェース。
// view.Rendererが実装する。
type PageRenderer interface {
	Render(w http.ResponseWriter, status int, page string, data *view.PageData) error
}

// pages はページ描画とエラー画面の共通処理をまとめる。
type pages struct {
	renderer PageRenderer
}

// render はログインユーザーとCSRFトークンを補ってページを描画する。
func (p pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data *view.PageData) {
	if data == nil {
		data = &view.PageData{}
	}
	data.User = middleware.UserFromContext(r.Context())
	data.CSRFToken = middleware.CSRFTokenFromContext(r.Context())

	if err := p.renderer.Render(w, status, page, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// renderError はエラー画面を描画する。
func (p pages) renderError(w http.ResponseWriter, r *http.Request, status int, appErr *model.AppError) {
	p.render(w, r, status, view.PageError, &view.PageData{Title: "Error", Error: appErr})
}

// handleServiceError はサービス層から返されたエラーをエラー画面とHTTPステータスコードに変換する。
func (p pages) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, appErr := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("internal server error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	p.renderError(w, r, status, appErr)
}

// mapServiceError はドメインエラーをHTTPステータスコードと画面表示用エラーにマッピングする。
// 対応しないエラーは内部エラーとして扱い、詳細は画面に出さない。
func mapServiceError(err error) (int, *model.AppError) {
	var appErr *model.AppError
	switch {
	case errors.As(err, &appErr):
		return appErrorStatus(appErr), appErr
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, model.NewBlogNotFoundError()
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, model.NewInvalidCredentialsError()
	case errors.Is(err, model.ErrDuplicateUsername):
		return http.StatusConflict, model.NewDuplicateUsernameError()
	case errors.Is(err, model.ErrEmptyTitle):
		return http.StatusBadRequest, model.NewEmptyTitleError()
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, model.NewInvalidInputError("enter a username and password")
	default:
		return http.StatusInternalServerError, model.NewInternalError()
	}
}

// appErrorStatus はAppErrorコードからHTTPステータスコードにマッピングする。
func appErrorStatus(appErr *model.AppError) int {
	switch appErr.Code {
	case model.ErrCodeBlogNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateUsername:
		return http.StatusConflict
	case model.ErrCodeEmptyTitle, model.ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
