package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tatianab/duelul-ideilor/internal/api"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/engine"
	"github.com/tatianab/duelul-ideilor/internal/logging"
	"github.com/tatianab/duelul-ideilor/internal/models"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve duels over HTTP for the browser client",
	Long: `Starts the JSON API. Duels live in memory only and are forgotten on
restart; preferences, generated images and reports are written to the save
directory. Logs are JSON on stdout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (overrides DUEL_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.Addr = serveFlags.addr
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, "json", os.Stdout)
	log := logging.New("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.ImageModel, logging.New("engine"))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer eng.Close()

	store := models.NewStore(cfg.SaveDir)
	reg := api.NewRegistry(eng, duel.Options{
		Logger:        logging.New("duel"),
		CallTimeout:   cfg.OracleTimeout,
		ImageMinScore: cfg.ImageMinScore,
		Images:        store,
	})

	// A turn may chain the scoring call and the summary call.
	var writeTimeout time.Duration
	if cfg.OracleTimeout > 0 {
		writeTimeout = 2*cfg.OracleTimeout + 10*time.Second
	}
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewServer(reg, store, logging.New("api")).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "addr", srv.Addr, "model", cfg.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		reg.CloseAll()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
