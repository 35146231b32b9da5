package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrisoko/sokobot/core/bootstrap"
	"github.com/agrisoko/sokobot/core/logger"
	"github.com/agrisoko/sokobot/core/webhook"
	"github.com/agrisoko/sokobot/core/whatsapp"
	"github.com/agrisoko/sokobot/market/flow"
	"github.com/agrisoko/sokobot/market/notify"
	"github.com/agrisoko/sokobot/market/router"
	"github.com/agrisoko/sokobot/market/store"
)

const shutdownGrace = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	startedAt := time.Now()
	boot, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg,
		Database: cfg.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = boot.DB.Close()
		_ = logger.Shutdown()
	}()

	sender := whatsapp.NewClient(whatsapp.Options{
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		GraphBaseURL:  cfg.WhatsApp.GraphBaseURL,
	})

	st := store.New(boot.DB)
	notifier := notify.New(st, sender)
	listing := flow.NewListing(st, sender, notifier, nil)
	commands := router.New(st, sender, listing, notifier)

	srv := webhook.NewServer(cfg, commands)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	logger.Info(ctx, "app", "ready",
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "app", "shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
