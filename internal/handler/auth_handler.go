// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vasantisuthar/journal/internal/auth"
	"github.com/vasantisuthar/journal/internal/middleware"
	"github.com/vasantisuthar/journal/internal/model"
	"github.com/vasantisuthar/journal/internal/view"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	Register(ctx context.Context, username, password string) (*model.Session, error)
	Authenticate(ctx context.Context, creds auth.Credentials) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はトップ画面、ユーザー登録、ログイン、OAuth、ログアウトのHTTPハンドラー。
type AuthHandler struct {
	pages
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, renderer PageRenderer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		pages:   pages{renderer: renderer},
		service: service,
		config:  config,
	}
}

// Home はトップ画面を表示する。
// GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageIndex, nil)
}

// SignupPage はユーザー登録画面を表示する。
// GET /signup
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageSignup, &view.PageData{Title: "Register"})
}

// Register はローカルユーザーを登録し、そのままログインさせる。
// POST /
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	session, err := h.service.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) || errors.Is(err, model.ErrInvalidInput) {
			status, appErr := mapServiceError(err)
			h.render(w, r, status, view.PageSignup, &view.PageData{Title: "Register", Error: appErr})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.startSession(w, r, session)
	http.Redirect(w, r, "/", http.StatusFound)
}

// LoginPage はログイン画面を表示する。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageLogin, &view.PageData{Title: "Log In"})
}

// Login はユーザー名とパスワードでログインする。
// 失敗理由（ユーザー名・パスワードのどちらが誤りか）は画面に出さない。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Authenticate(r.Context(), auth.Credentials{
		Method:   auth.AuthMethodLocal,
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) || errors.Is(err, model.ErrInvalidInput) {
			h.render(w, r, http.StatusUnauthorized, view.PageLogin, &view.PageData{
				Title: "Log In",
				Error: model.NewInvalidCredentialsError(),
			})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.startSession(w, r, session)
	http.Redirect(w, r, "/", http.StatusFound)
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusInternalServerError, model.NewInternalError())
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback はOAuthコールバックを処理する。
// 失敗した場合はログイン画面にリダイレクトする。
// GET /auth/google/journal?code=xxx&state=yyy
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	state := query.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	h.clearCookie(w, oauthStateCookie, "")
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if providerErr := query.Get("error"); providerErr != "" {
		slog.Info("oauth authorization denied", slog.String("reason", providerErr))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	session, err := h.service.Authenticate(r.Context(), auth.Credentials{
		Method: auth.AuthMethodOAuth,
		Code:   query.Get("code"),
	})
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.startSession(w, r, session)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout はセッションを破棄してからログイン画面にリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionTokenFromContext(r.Context()); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			// ログアウト失敗してもCookieはクリアする
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	h.clearCookie(w, middleware.SessionCookieName, h.config.CookieDomain)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// startSession はセッションCookieを設定する。
// ログイン前のセッションが残っていれば破棄する。
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, session *model.Session) {
	if old := middleware.SessionTokenFromContext(r.Context()); old != "" {
		if err := h.service.Logout(r.Context(), old); err != nil {
			slog.Warn("failed to discard previous session", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
