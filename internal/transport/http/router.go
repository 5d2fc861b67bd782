package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-api-pool/internal/application/auth"
	"github.com/go-api-pool/internal/application/delivery"
	"github.com/go-api-pool/internal/application/device"
	fileapp "github.com/go-api-pool/internal/application/file"
	"github.com/go-api-pool/internal/application/news"
	"github.com/go-api-pool/internal/application/notification"
	"github.com/go-api-pool/internal/application/pool"
	"github.com/go-api-pool/internal/application/role"
	"github.com/go-api-pool/internal/application/session"
	"github.com/go-api-pool/internal/application/status"
	"github.com/go-api-pool/internal/application/user"
	"github.com/go-api-pool/internal/config"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/transport/http/handler"
	appmiddleware "github.com/go-api-pool/internal/transport/http/middleware"
)

// NewRouter builds the application router, wiring repositories into services
// and services into handlers.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second with burst of 10 on sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	// Delivery workers double as the send-now fast path for the enqueuers.
	emailWorker := delivery.NewEmailWorker(deps.EmailPoolRepo, deps.EmailSentRepo, deps.Mailer, cfg.PoolMaxSendAttempts)
	smsWorker := delivery.NewSMSWorker(deps.SMSPoolRepo, deps.SMSSentRepo, deps.SNSSender, cfg.PoolMaxSendAttempts)
	pushWorker := delivery.NewPushWorker(deps.PushPoolRepo, deps.PushSentRepo, deps.DeviceRepo, deps.NotificationRepo, deps.SNSSender, cfg.PoolMaxSendAttempts)

	emailEnq := pool.NewEmailEnqueuer(deps.EmailPoolRepo, deps.EmailTemplateRepo, emailWorker)
	smsEnq := pool.NewSMSEnqueuer(deps.SMSPoolRepo, deps.SMSTemplateRepo, smsWorker)
	pushEnq := pool.NewPushEnqueuer(deps.PushPoolRepo, deps.PushTemplateRepo, pushWorker)

	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		DeviceRepo:      deps.DeviceRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
		Freshness:       cfg.SessionFreshness,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		Sessions:    sessionSvc,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		UserRepo:         deps.UserRepo,
		Sessions:         sessionSvc,
		EmailPool:        emailEnq,
		SMSPool:          smsEnq,
		OTPExpiry:        cfg.OTPExpiry,
		EmailTokenExpiry: cfg.EmailTokenExpiry,
	})
	statusSvc := status.NewService(deps.StatusRepo)
	deviceSvc := device.NewService(deps.DeviceRepo, deps.AppVersionRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)
	fileSvc := fileapp.NewService(deps.S3Store, deps.FileRepo)
	roleSvc := role.NewService(deps.RoleRepo)
	newsSvc := news.NewService(deps.NewsRepo, deps.UserRepo, pushEnq)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	statusH := handler.NewStatusHandler(statusSvc)
	deviceH := handler.NewDeviceHandler(deviceSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	fileH := handler.NewFileHandler(fileSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)
	phoneH := handler.NewPhoneConfirmHandler(authSvc)
	roleH := handler.NewRoleHandler(roleSvc)
	newsH := handler.NewNewsHandler(newsSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public routes.
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Delete("/users/{id}", userH.Delete)
			r.Post("/users/me/password", userH.ChangePassword)

			r.Get("/statuses", statusH.List)
			r.Get("/statuses/{id}", statusH.Get)

			r.Get("/devices", deviceH.List)
			r.Put("/devices/version", deviceH.CheckVersion)
			r.Get("/devices/{id}", deviceH.Get)
			r.Put("/devices/{id}", deviceH.Update)
			r.Delete("/devices/{id}", deviceH.Delete)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Get("/news", newsH.ListActive)
			r.Get("/news/{id}", newsH.Get)

			r.Post("/files/s3", fileH.Upload)
			r.Post("/files/s3/base64", fileH.UploadBase64)
			r.Get("/files/s3/base64/{id}", fileH.GetBase64)
			r.Post("/files/s3/base64/{id}", fileH.MethodNotAllowed)
			r.Get("/files/s3/{id}", fileH.Download)
			r.Delete("/files/s3/{id}", fileH.Delete)

			r.Post("/password-recovery/change-password", pwH.ChangePassword)
			r.Post("/confirm-email/{action}", emailH.Action)
			r.Post("/confirm-phone/{action}", phoneH.Action)

			// Admin-only routes.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)

				r.Post("/statuses", statusH.Create)
				r.Put("/statuses/{id}", statusH.Update)
				r.Delete("/statuses/{id}", statusH.Delete)

				r.Get("/roles", roleH.List)
				r.Post("/roles", roleH.Create)
				r.Get("/roles/{id}", roleH.Get)
				r.Put("/roles/{id}", roleH.Update)
				r.Delete("/roles/{id}", roleH.Delete)

				r.Get("/news/pending", newsH.ListPending)
				r.Post("/news", newsH.Create)
				r.Put("/news/{id}", newsH.Update)
				r.Delete("/news/{id}", newsH.Delete)
			})
		})
	})

	return r
}
