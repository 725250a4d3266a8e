package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chirper/internal/handler"
	"chirper/internal/httputil"
	authmw "chirper/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	FeedHandler         *handler.FeedHandler
	PostHandler         *handler.PostHandler
	NotificationHandler *handler.NotificationHandler
	Tokens              authmw.TokenParser
	MaxBodyBytes        int64
	Logger              *zap.Logger
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger(cfg.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := authmw.AuthMiddleware(cfg.Tokens, cfg.Logger.Named("auth"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
			r.With(authmw.OptionalAuthMiddleware(cfg.Tokens, cfg.Logger.Named("auth"))).Post("/logout", cfg.AuthHandler.Logout)
			r.With(requireAuth).Get("/me", cfg.AuthHandler.Me)
		})

		// Everything below requires authentication
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile/{username}", cfg.UserHandler.GetProfile)
				r.Get("/suggested", cfg.FollowHandler.Suggested)
				r.Post("/follow/{id}", cfg.FollowHandler.FollowUnfollow)
				r.Post("/update", cfg.UserHandler.Update)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/all", cfg.FeedHandler.All)
				r.Get("/following", cfg.FeedHandler.Following)
				r.Get("/likes/{id}", cfg.FeedHandler.Liked)
				r.Get("/user/{username}", cfg.FeedHandler.UserPosts)
				r.Post("/create", cfg.PostHandler.Create)
				r.Post("/like/{id}", cfg.PostHandler.LikeUnlike)
				r.Post("/comment/{id}", cfg.PostHandler.Comment)
				r.Delete("/{id}", cfg.PostHandler.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Delete("/", cfg.NotificationHandler.DeleteAll)
			})
		})
	})

	return r
}
