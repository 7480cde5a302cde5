package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/pcruz7/lancer/internal/auth"
	"github.com/pcruz7/lancer/internal/client"
	clientStore "github.com/pcruz7/lancer/internal/client/store"
	"github.com/pcruz7/lancer/internal/config"
	"github.com/pcruz7/lancer/internal/database"
	lancerHttp "github.com/pcruz7/lancer/internal/http"
	accountHandler "github.com/pcruz7/lancer/internal/http/account"
	clientHandler "github.com/pcruz7/lancer/internal/http/client"
	invoiceHandler "github.com/pcruz7/lancer/internal/http/invoice"
	projectHandler "github.com/pcruz7/lancer/internal/http/project"
	quoteHandler "github.com/pcruz7/lancer/internal/http/quote"
	reportHandler "github.com/pcruz7/lancer/internal/http/report"
	"github.com/pcruz7/lancer/internal/invoice"
	invoiceStore "github.com/pcruz7/lancer/internal/invoice/store"
	"github.com/pcruz7/lancer/internal/project"
	projectStore "github.com/pcruz7/lancer/internal/project/store"
	"github.com/pcruz7/lancer/internal/quote"
	quoteStore "github.com/pcruz7/lancer/internal/quote/store"
	"github.com/pcruz7/lancer/internal/user"
	userStore "github.com/pcruz7/lancer/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), database.Pool{
		MaxConns:  cfg.DB.MaxConns,
		IdleConns: cfg.DB.IdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		userService    = user.NewService(userStore.New(db))
		clientService  = client.NewService(clientStore.New(db))
		projectService = project.NewService(projectStore.New(db))
		quoteService   = quote.NewService(quoteStore.New(db))
		invoiceService = invoice.NewService(invoiceStore.New(db))
	)

	var (
		accountH = accountHandler.NewHandler(userService, tokens)
		clientH  = clientHandler.NewHandler(clientService)
		projectH = projectHandler.NewHandler(projectService)
		quoteH   = quoteHandler.NewHandler(quoteService)
		invoiceH = invoiceHandler.NewHandler(invoiceService, quoteService)
		reportH  = reportHandler.NewHandler(quoteService, invoiceService, projectService, clientService)
	)

	router := lancerHttp.New(tokens, accountH, clientH, projectH, quoteH, invoiceH, reportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
