package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasantisuthar/journal/internal/middleware"
	"github.com/vasantisuthar/journal/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver    middleware.UserResolver
	CSRFConfig      middleware.CSRFConfig
	MetricsRecorder middleware.HTTPRequestRecorder
	Logger          *slog.Logger

	// 画面
	Renderer PageRenderer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 記事
	BlogService BlogServiceInterface

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Metrics → Session → Logging → CSRF
//
// /health と /metrics はミドルウェアチェーンの外に配置する。
// /{titleName} は他の全ルートと衝突しないよう最後に登録する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.AuthConfig)
	blogHandler := NewBlogHandler(deps.BlogService, deps.Renderer)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware(func(w http.ResponseWriter, req *http.Request) {
			authHandler.renderError(w, req, http.StatusInternalServerError, model.NewInternalError())
		}))
		r.Use(middleware.NewSecurityHeadersMiddleware())
		if deps.MetricsRecorder != nil {
			r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
		}
		r.Use(middleware.NewSessionMiddleware(deps.UserResolver))
		r.Use(middleware.NewLoggingMiddleware(logger))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// --- 認証不要のルート ---
		r.Get("/", authHandler.Home)
		r.Post("/", authHandler.Register)
		r.Get("/signup", authHandler.SignupPage)
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// OAuthフロー（コールバックはGETのためCSRFミドルウェアの検証対象外）
		r.Route("/auth/google", func(r chi.Router) {
			r.Get("/", authHandler.GoogleLogin)
			r.Get("/journal", authHandler.GoogleCallback)
		})

		// --- 認証が必要なルート ---
		// 匿名リクエストはログイン画面にリダイレクトする
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser("/login"))

			r.Get("/blogs", blogHandler.List)
			r.Post("/blogs", blogHandler.Create)
			r.Get("/compose", blogHandler.Compose)
			r.Post("/search", blogHandler.Search)
			r.Post("/delete", blogHandler.Delete)
			r.Get("/edit", blogHandler.EditForm)
			r.Post("/edit", blogHandler.EditForm)
			r.Post("/updateBlog", blogHandler.Update)
			r.Get("/post/{title}", blogHandler.ViewPost)

			// 旧URL形式。固定パスより優先度が低いことをchiのルーティングが保証する
			r.Get("/{titleName}", blogHandler.ViewLegacy)
		})
	})

	return r
}
