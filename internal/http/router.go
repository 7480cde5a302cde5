package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pcruz7/lancer/internal/auth"
	"github.com/pcruz7/lancer/internal/http/account"
	"github.com/pcruz7/lancer/internal/http/client"
	"github.com/pcruz7/lancer/internal/http/invoice"
	"github.com/pcruz7/lancer/internal/http/project"
	"github.com/pcruz7/lancer/internal/http/quote"
	"github.com/pcruz7/lancer/internal/http/report"
)

func New(
	tokens *auth.Manager,
	accountV1 *account.Handler,
	clientsV1 *client.Handler,
	projectsV1 *project.Handler,
	quotesV1 *quote.Handler,
	invoicesV1 *invoice.Handler,
	reportsV1 *report.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accountV1.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware)

			accountV1.ProtectedRoutes(r)

			r.Route("/clients", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				clientsV1.Routes(r)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				projectsV1.Routes(r)
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				quotesV1.Routes(r)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				invoicesV1.Routes(r)
			})

			r.Route("/reports", reportsV1.Routes)
		})
	})

	return router
}
