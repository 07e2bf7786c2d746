package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"flavourkitchen/cms"
	"flavourkitchen/config"
	"flavourkitchen/contact"
	"flavourkitchen/handlers"
	"flavourkitchen/logger"
	"flavourkitchen/mail"
	"flavourkitchen/views"
)

type serveFlags struct {
	addr     string
	fixtures string
}

func newServeCmd(envFile *string) *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *envFile, flags)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (overrides ADDR)")
	cmd.Flags().StringVar(&flags.fixtures, "fixtures", "", "Serve content from a JSON fixtures file instead of the CMS")
	return cmd
}

func runServe(ctx context.Context, envFile string, flags serveFlags) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Addr = flags.addr
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, AddSource: cfg.LogAddSource})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, flags.fixtures, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Warn("close content store", "error", err)
		}
	}()

	renderer, err := views.New()
	if err != nil {
		return err
	}

	outbound := &http.Client{Timeout: cfg.HTTPTimeout}
	site := &handlers.Site{
		Repo:  cms.Instrument(repo),
		Views: renderer,
		Relay: &contact.Relay{
			// Read per request so a missing key surfaces as a contact error,
			// not a startup failure.
			APIKey: func() string { return cfg.ResendAPIKey },
			From:   cfg.ContactFrom,
			To:     cfg.ContactTo,
			NewSender: func(apiKey string) mail.Sender {
				return mail.NewResend(apiKey, mail.WithHTTPClient(outbound))
			},
			Logger: log,
		},
		Images: &handlers.ImageProxy{AllowedHosts: cfg.ImageAllowedHosts, Client: outbound, Log: log},
		Log:    log,
	}
	if cfg.ResendAPIKey == "" {
		log.Warn("RESEND_API_KEY is not set; contact submissions will fail")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(site, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr, "backend", cfg.CMSBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
