package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/middleware"
	"github.com/sitecrew/timesheet-backend/internal/pkg/jwt"
)

// RouterOptions carries the deployment-specific knobs of the router.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	ownershipHandler OwnershipHandler,
	timesheetHandler TimesheetHandler,
	consolidationHandler ConsolidationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timesheet-backend"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireFieldStaff)

			r.Route("/ownership", func(r chi.Router) {
				r.Post("/authorize", ownershipHandler.Authorize)
				r.Post("/authorize-days", ownershipHandler.AuthorizeDays)
				r.Post("/release", ownershipHandler.Release)
				r.Get("/availability", ownershipHandler.Availability)
			})

			r.Route("/timesheets", func(r chi.Router) {
				r.Post("/", timesheetHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", timesheetHandler.Get)
					r.Put("/entries", timesheetHandler.UpsertEntry)
					r.Post("/send", timesheetHandler.SendToHR)
					r.Post("/inject-leave", timesheetHandler.InjectLeave)
				})
			})
		})

		// Payroll staff only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireHR)

			r.Route("/consolidation", func(r chi.Router) {
				r.Get("/", consolidationHandler.Consolidate)
				r.Get("/export", consolidationHandler.Export)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Post("/close", consolidationHandler.ClosePeriod)
				r.Get("/{year}/{month}", consolidationHandler.GetClosedPeriod)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	return r
}
