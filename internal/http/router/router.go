package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/config"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/handler"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/middleware"
)

type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Auth    *middleware.Auth
	Limiter *middleware.RateLimiter

	Health    *handler.HealthHandler
	AuthH     *handler.AuthHandler
	Machines  *handler.MachineHandler
	Schedules *handler.ScheduleHandler
	Records   *handler.RecordHandler
	Users     *handler.UserHandler
}

// New assembles the full route tree. Middleware order matters: request
// IDs and panic recovery wrap everything, the request logger sees final
// status codes, and the rate limiter runs before any body is read.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(d.Logger, d.Config.RequestLogPrefix, d.Config.LogPreviewLen, d.Config.LogLineMax))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	r.Get("/health", d.Health.Health)
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.SanitizeBody)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", d.AuthH.Login)
			auth.Post("/refresh", d.AuthH.Refresh)
			auth.Post("/logout", d.AuthH.Logout)

			auth.Group(func(priv chi.Router) {
				priv.Use(d.Auth.RequireAuth)
				priv.Get("/me", d.AuthH.Me)
				priv.Get("/sessions", d.AuthH.Sessions)
				priv.With(middleware.RequireIDParam("session_id")).
					Delete("/sessions/{session_id}", d.AuthH.RevokeSession)
			})
		})

		api.Group(func(priv chi.Router) {
			priv.Use(d.Auth.RequireAuth)

			priv.Route("/machines", func(m chi.Router) {
				m.Get("/", d.Machines.List)
				m.Post("/", d.Machines.Create)
				m.With(middleware.RequireIDParam("machine_id")).Route("/{machine_id}", func(one chi.Router) {
					one.Get("/", d.Machines.Get)
					one.Put("/", d.Machines.Update)
					one.Delete("/", d.Machines.Delete)
					one.Get("/history", d.Machines.History)
				})
			})

			priv.Route("/schedules", func(s chi.Router) {
				s.Get("/", d.Schedules.List)
				s.Get("/due", d.Schedules.Due)
				s.Post("/", d.Schedules.Create)
				s.With(middleware.RequireIDParam("schedule_id")).Route("/{schedule_id}", func(one chi.Router) {
					one.Get("/", d.Schedules.Get)
					one.Put("/", d.Schedules.Update)
					one.Delete("/", d.Schedules.Delete)
				})
			})

			priv.Route("/records", func(rec chi.Router) {
				rec.Get("/", d.Records.List)
				rec.Post("/", d.Records.Create)
				rec.With(middleware.RequireIDParam("record_id")).Route("/{record_id}", func(one chi.Router) {
					one.Get("/", d.Records.Get)
					one.Put("/", d.Records.Update)
					one.Delete("/", d.Records.Delete)
					one.Post("/attachment", d.Records.UploadAttachment)
					one.Get("/attachment", d.Records.AttachmentURL)
				})
			})

			priv.Get("/reports/maintenance", d.Records.MonthlyReport)

			priv.Route("/users", func(u chi.Router) {
				u.Use(d.Auth.RequireAdmin)
				u.Get("/", d.Users.List)
				u.Post("/", d.Users.Create)
				u.With(middleware.RequireIDParam("user_id")).Route("/{user_id}", func(one chi.Router) {
					one.Get("/", d.Users.Get)
					one.Put("/", d.Users.Update)
					one.Delete("/", d.Users.Delete)
				})
			})
		})
	})

	return r
}
