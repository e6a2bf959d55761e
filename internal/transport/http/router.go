package http

import (
	"net/http"

	"github.com/bookswap-api/internal/application/auth"
	"github.com/bookswap-api/internal/application/book"
	"github.com/bookswap-api/internal/application/chat"
	fileapp "github.com/bookswap-api/internal/application/file"
	"github.com/bookswap-api/internal/application/match"
	"github.com/bookswap-api/internal/application/neighborhood"
	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/application/session"
	"github.com/bookswap-api/internal/application/swap"
	"github.com/bookswap-api/internal/application/user"
	"github.com/bookswap-api/internal/config"
	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/transport/http/handler"
	appmiddleware "github.com/bookswap-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10. Applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider, cfg.RefreshTokenExpiry)
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		OwnedRepo:       deps.OwnedBookRepo,
		WantedRepo:      deps.WantedBookRepo,
		Cascade:         deps.Cascade,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenExpiry,
	})
	authDeps := auth.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		UserRepo:         deps.UserRepo,
		SessionRepo:      deps.SessionRepo,
		Mailer:           deps.Mailer,
		JWTProvider:      deps.JWTProvider,
		RefreshTokenDur:  cfg.RefreshTokenExpiry,
	}
	if deps.GoogleAuth != nil {
		authDeps.GoogleVerifier = deps.GoogleAuth
	}
	authSvc := auth.NewService(authDeps)
	bookSvc := book.NewService(book.ServiceDeps{
		OwnedRepo:  deps.OwnedBookRepo,
		WantedRepo: deps.WantedBookRepo,
		UserRepo:   deps.UserRepo,
		Notifier:   deps.Dispatcher,
		Catalog:    deps.CatalogClient,
	})
	matchSvc := match.NewService(deps.OwnedBookRepo, deps.WantedBookRepo)
	chatSvc := chat.NewService(deps.ChatRepo, deps.MessageRepo, deps.UserRepo, deps.Dispatcher)
	swapSvc := swap.NewService(deps.SwapRepo, deps.OwnedBookRepo, deps.Dispatcher)
	notifSvc := notification.NewService(deps.NotificationRepo)
	prefSvc := notification.NewPreferenceService(deps.PreferenceRepo)
	neighborhoodSvc := neighborhood.NewService(deps.NeighborhoodRepo)
	fileSvc := fileapp.NewService(deps.S3Store, deps.FileRepo, deps.UserRepo, cfg.ProfileImageURLTTL)

	healthH := handler.NewHealthHandler(nil)
	if deps.MailClient != nil {
		healthH = handler.NewHealthHandler(deps.MailClient)
	}
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	accountH := handler.NewAccountHandler(authSvc)
	bookH := handler.NewBookHandler(bookSvc)
	matchH := handler.NewMatchHandler(matchSvc)
	chatH := handler.NewChatHandler(chatSvc)
	swapH := handler.NewSwapHandler(swapSvc)
	notifH := handler.NewNotificationHandler(notifSvc, prefSvc)
	neighborhoodH := handler.NewNeighborhoodHandler(neighborhoodSvc)
	fileH := handler.NewFileHandler(fileSvc, cfg.MaxUploadBytes)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/ready", healthH.Ready)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/sessions/google", accountH.GoogleSignIn)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)
		// Signup forms need the neighborhood list before an account exists.
		r.Get("/neighborhoods", neighborhoodH.List)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Post("/users/change-password", userH.ChangePassword)
			r.Post("/users/profile-image", fileH.UploadProfileImage)
			r.Get("/users/profile-image", fileH.MethodNotAllowed)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Delete("/users/{id}", userH.Delete)
			r.Get("/users/{id}/profile-image", fileH.GetProfileImage)
			r.Post("/account/delete", accountH.DeleteAccount)

			r.Post("/books", bookH.CreateOwned)
			r.Get("/books", bookH.ListOwned)
			r.Get("/books/catalog-search", bookH.SearchCatalog)
			r.Get("/books/{id}", bookH.GetOwned)
			r.Put("/books/{id}", bookH.UpdateOwned)
			r.Delete("/books/{id}", bookH.DeleteOwned)

			r.Post("/wanted-books", bookH.CreateWanted)
			r.Get("/wanted-books", bookH.ListWanted)
			r.Delete("/wanted-books/{id}", bookH.DeleteWanted)

			r.Get("/matches", matchH.List)

			r.Post("/chats", chatH.Open)
			r.Get("/chats", chatH.List)
			r.Get("/chats/{id}", chatH.Get)
			r.Get("/chats/{id}/messages", chatH.ListMessages)
			r.Post("/chats/{id}/messages", chatH.SendMessage)

			r.Post("/swaps", swapH.Create)
			r.Get("/swaps/incoming", swapH.ListIncoming)
			r.Get("/swaps/outgoing", swapH.ListOutgoing)
			r.Get("/swaps/{id}", swapH.Get)
			r.Post("/swaps/{id}/accept", swapH.Accept)
			r.Post("/swaps/{id}/decline", swapH.Decline)
			r.Post("/swaps/{id}/complete", swapH.Complete)

			r.Get("/notifications", notifH.ListUnread)
			r.Get("/notifications/preferences", notifH.GetPreferences)
			r.Put("/notifications/preferences", notifH.UpdatePreferences)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Post("/files", fileH.Upload)
			r.Get("/files/{id}", fileH.Download)
			r.Delete("/files/{id}", fileH.Delete)

			r.Get("/neighborhoods/{id}", neighborhoodH.Get)
			r.Post("/password-recovery/change-password", pwH.ChangePassword)
			r.Post("/confirm-email/{action}", emailH.Action)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)

				r.Post("/neighborhoods", neighborhoodH.Create)
				r.Put("/neighborhoods/{id}", neighborhoodH.Update)
				r.Delete("/neighborhoods/{id}", neighborhoodH.Delete)
			})
		})
	})

	return r
}
