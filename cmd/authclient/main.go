package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/authmodel"
	"github.com/jrsteele09/go-auth-client/claims"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/storage/file"
	"github.com/jrsteele09/go-auth-client/storage/memory"
	"github.com/jrsteele09/go-auth-client/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const readyTimeout = 30 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("auth client failed")
	}
	log.Info().Msg("auth client stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	configureLogging(c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx := context.Background()
	store, closeStore, err := openStorage(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	mt, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("metrics.New: %w", err)
	}
	var metricsServer *http.Server
	if addr := c.GetMetricsAddr(); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: addr, Handler: mux}
		go listenAndServe(metricsServer)
	}

	manager, err := auth.New(auth.Config{Endpoint: c.GetEndpoint(), Storage: store},
		auth.WithDecoder(newDecoder(c)),
		auth.WithMetrics(mt),
		auth.WithRenewInterval(c.GetRenewInterval()),
		auth.WithLogger(log.Logger.With().Str("component", "auth").Logger()),
		auth.WithObserver(logAuthState),
	)
	if err != nil {
		return err
	}
	defer manager.Close()

	readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := manager.WaitReady(readyCtx); err != nil {
		return fmt.Errorf("auto-login: %w", err)
	}

	if !manager.IsAuthenticated() && c.GetUsername() != "" {
		if err := manager.Login(ctx, c.GetUsername(), c.GetPassword()); err != nil {
			log.Error().Err(err).Str("username", c.GetUsername()).Msg("login failed")
		}
	}
	if current, ok := manager.Session(); ok {
		log.Info().Str("user_id", current.UserID).Time("expires_at", current.ExpiresAt).Msg("session active")
	}

	waitForStopSignal()
	if metricsServer != nil {
		returnError = shutdown(metricsServer)
	}
	return returnError
}

func logAuthState(tr *authmodel.TokenResponse) {
	if tr == nil {
		log.Info().Msg("auth state: logged out")
		return
	}
	log.Info().Str("user_id", tr.UserID.String()).Msg("auth state: logged in")
}

func configureLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func newDecoder(c config.SessionConfig) claims.Decoder {
	if c.GetDecoder() == config.DecoderOIDC {
		return claims.NewOIDCDecoder(c.GetIssuer())
	}
	return claims.NewJWTDecoder()
}

func openStorage(ctx context.Context, c config.StorageConfig) (storage.Store, func(), error) {
	noop := func() {}
	switch c.GetStorageBackend() {
	case config.BackendMemory:
		return memory.New(), noop, nil
	case config.BackendSQLite:
		path := c.GetStoragePath()
		if path == "" {
			path = "session.db"
		}
		s, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite.Open: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close session database")
			}
		}, nil
	case config.BackendFile:
		var options []file.Option
		if passphrase := c.GetStoragePassphrase(); passphrase != "" {
			options = append(options, file.WithPassphrase(passphrase))
		}
		var (
			s   *file.Store
			err error
		)
		if path := c.GetStoragePath(); path != "" {
			s, err = file.Open(path, options...)
		} else {
			s, err = file.OpenDefault(options...)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("file.Open: %w", err)
		}
		log.Debug().Str("path", s.Path()).Msg("using file storage")
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", c.GetStorageBackend())
	}
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("metrics listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
