// Package main boots the storefront HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/auth"
	"github.com/fairyhunter13/storefront-service/internal/config"
	httpapi "github.com/fairyhunter13/storefront-service/internal/http"
	"github.com/fairyhunter13/storefront-service/internal/mail"
	"github.com/fairyhunter13/storefront-service/internal/notify"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

type backend interface {
	httpapi.Backend
	Close() error
}

func openStore(ctx context.Context, cfg config.Config) (backend, error) {
	if cfg.DBDriver == "memory" {
		return store.NewMemory(), nil
	}
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func authenticator(cfg config.Config) auth.Authenticator {
	if cfg.AuthMode == "remote" {
		return auth.NewRemoteAuthenticator(cfg.AuthURL, cfg.AuthAPIKey)
	}
	return auth.HeaderAuthenticator{}
}

func sender(cfg config.Config) mail.Sender {
	if cfg.MailFunctionURL == "" {
		return mail.LogSender{Log: obs.Logger.Info}
	}
	return mail.NewFunctionSender(cfg.MailFunctionURL, cfg.MailAPIKey)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "db_driver", cfg.DBDriver, "auth_mode", cfg.AuthMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	openCtx, cancelOpen := context.WithTimeout(ctx, 30*time.Second)
	st, err := openStore(openCtx, cfg)
	cancelOpen()
	if err != nil {
		obs.Logger.Error("store_open_failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	d := notify.NewDispatcher(sender(cfg), notify.Options{
		Workers:       cfg.MailWorkers,
		HighWatermark: cfg.MailHighWater,
	})
	d.Start(ctx)

	app := httpapi.NewApp(cfg, st, authenticator(cfg), d)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "mail_pending", d.Stats().Pending, "worker_count", d.WorkerCount())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := d.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	cancel()
	d.Stop()
	obs.Logger.Info("service_stopped")
}
