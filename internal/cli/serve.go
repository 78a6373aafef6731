package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/personachat/personachat/internal/server"
	"github.com/personachat/personachat/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat API",
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()

	kv, err := storage.NewSQLiteKV(cfg.StateDBPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	srv := server.NewServer(server.Deps{
		Completer:          buildCompleter(cfg, logger),
		Memory:             buildMemoryClient(cfg, logger),
		KV:                 kv,
		Logger:             logger,
		ContextTokenBudget: cfg.ContextTokenBudget,
		ContextEventRatio:  cfg.ContextEventRatio,
	})

	go func() {
		if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("server is now running, press CTRL-C to exit",
		"addr", cfg.ListenAddr,
		"memory_enabled", cfg.MemoryEnabled())

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
