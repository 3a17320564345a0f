// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/torxx666/skob26/service/internal/auth"
	"github.com/torxx666/skob26/service/internal/cache"
	"github.com/torxx666/skob26/service/internal/config"
	"github.com/torxx666/skob26/service/internal/database"
	"github.com/torxx666/skob26/service/internal/game"
	"github.com/torxx666/skob26/service/internal/server"
	"github.com/torxx666/skob26/service/internal/session"
)

func main() {
	issueFlag := flag.String("issue-token", "", "print a player token for this name and exit")
	ttlFlag := flag.Duration("token-ttl", 24*time.Hour, "lifetime of an issued token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := cfg.NewLogger()

	if *issueFlag != "" {
		if err := issueToken(os.Stdout, cfg.JWTSecret, *issueFlag, *ttlFlag); err != nil {
			log.WithError(err).Fatal("could not issue token")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// issueToken writes a signed token for player to w.
func issueToken(w io.Writer, secret, player string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}
	token, err := auth.NewVerifier(secret).Issue(player, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := cache.ConnectRedis(connectCtx, cfg.RedisAddr); err != nil {
		return err
	}
	defer cache.Close()
	if cache.Rdb != nil {
		log.WithField("addr", cfg.RedisAddr).Info("action history enabled")
	}

	if err := database.ConnectDB(connectCtx, cfg.DatabaseURL); err != nil {
		return err
	}
	defer database.Close()
	if database.DB != nil {
		log.Info("round archive enabled")
	}

	settings := game.Settings{
		Rules:       cfg.Rules(),
		AIDelay:     cfg.AIDelay,
		RefillDelay: cfg.RefillDelay,
	}
	store := session.NewStore(settings, cfg.AICount, log)
	defer store.Shutdown()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	if !verifier.Enabled() {
		log.Warn("CHKOUBA_JWT_SECRET not set, players are not authenticated")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(store, verifier, log).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
