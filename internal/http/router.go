package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/forwarder/internal/http/auth"
	"github.com/MrJamesThe3rd/forwarder/internal/http/catalog"
	"github.com/MrJamesThe3rd/forwarder/internal/http/client"
	"github.com/MrJamesThe3rd/forwarder/internal/http/email"
	"github.com/MrJamesThe3rd/forwarder/internal/http/files"
	"github.com/MrJamesThe3rd/forwarder/internal/http/importsheet"
	"github.com/MrJamesThe3rd/forwarder/internal/http/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/http/maintenance"
	"github.com/MrJamesThe3rd/forwarder/internal/http/pattern"
	"github.com/MrJamesThe3rd/forwarder/internal/http/payment"
	"github.com/MrJamesThe3rd/forwarder/internal/http/workorder"
	"github.com/MrJamesThe3rd/forwarder/internal/metrics"
)

type Handlers struct {
	Invoices    *invoice.Handler
	Payments    *payment.Handler
	Catalog     *catalog.Handler
	Patterns    *pattern.Handler
	Clients     *client.Handler
	WorkOrders  *workorder.Handler
	Import      *importsheet.Handler
	Email       *email.Handler
	Maintenance *maintenance.Handler
	Files       *files.Handler

	// Media serves locally stored blobs under /media. Nil when blobs live
	// in a remote bucket.
	Media http.Handler
}

type Options struct {
	Auth           *auth.Authenticator
	AllowedOrigins []string
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(metrics.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Handle("/metrics", metrics.Handler())

	if h.Media != nil {
		router.Handle("/media/*", http.StripPrefix("/media/", h.Media))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth.Require)
		}

		r.Route("/invoices", h.Invoices.Routes)

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
			h.Payments.Routes(r)
		})

		r.Route("/providers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.ProviderRoutes(r)
		})

		r.Route("/cost-types", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.CostTypeRoutes(r)
		})

		r.Route("/patterns", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Patterns.Routes(r)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Clients.Routes(r)
		})

		r.Route("/work-orders", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.WorkOrders.Routes(r)
		})

		r.Route("/import", h.Import.Routes)

		r.Route("/email", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Email.Routes(r)
		})

		r.Route("/maintenance", h.Maintenance.Routes)
		r.Route("/files", h.Files.Routes)
	})

	return router
}
