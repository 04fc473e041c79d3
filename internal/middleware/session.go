// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vasantisuthar/journal/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userContextKey         = contextKey("user")
	sessionTokenContextKey = contextKey("session_token")
)

// UserResolver はセッショントークンから現在のユーザーを解決する。
// auth.Serviceが実装する。
type UserResolver interface {
	GetCurrentUser(ctx context.Context, token string) (*model.User, error)
}

// NewSessionMiddleware はCookieのセッショントークンからユーザーを解決し、
// リクエストコンテキストに注入するミドルウェアを返す。
// トークンがない・無効・期限切れの場合は匿名リクエストとしてそのまま通す。
// 認証が必要かどうかの判断は各ルート（RequireUser）に委ねる。
func NewSessionMiddleware(resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionTokenContextKey, cookie.Value)

			user, err := resolver.GetCurrentUser(ctx, cookie.Value)
			if err != nil {
				if errors.Is(err, model.ErrStoreUnavailable) {
					slog.Warn("session lookup failed, treating request as anonymous",
						slog.String("error", err.Error()),
					)
				} else {
					slog.Debug("session not resolved", slog.String("error", err.Error()))
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(ctx, user)))
		})
	}
}

// RequireUser は匿名リクエストをredirectPathへリダイレクトするミドルウェアを返す。
func RequireUser(redirectPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				http.Redirect(w, r, redirectPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 匿名リクエストの場合はnilを返す。
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, bool) {
	user := UserFromContext(ctx)
	if user == nil || user.ID == "" {
		return "", false
	}
	return user.ID, true
}

// SessionTokenFromContext はリクエストのCookieから読み取ったセッショントークンを返す。
// ログアウト処理でセッションを破棄する際に使用する。
func SessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenContextKey).(string)
	return token
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
