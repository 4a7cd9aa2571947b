package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/duelul-ideilor/internal/engine"
	"github.com/tatianab/duelul-ideilor/internal/logging"
	"github.com/tatianab/duelul-ideilor/internal/models"
	"github.com/tatianab/duelul-ideilor/internal/tui"
)

var playFlags struct {
	logFile string
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a duel in the terminal",
	Long: `Opens the terminal dashboard. Pick a difficulty tier, excluded topics and
favorite themes, then duel the AI. Logs go to a file because the UI owns the
terminal.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playFlags.logFile, "log-file", "", "Log file (overrides DUEL_LOG_FILE)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if playFlags.logFile != "" {
		cfg.LogFile = playFlags.logFile
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Init(level, "text", logFile)

	eng, err := engine.NewEngine(cmd.Context(), cfg.GeminiAPIKey, cfg.Model, cfg.ImageModel, logging.New("engine"))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer eng.Close()

	logging.New("play").Info("starting terminal duel", "model", cfg.Model, "save_dir", cfg.SaveDir)
	return tui.Run(tui.Deps{
		Oracle:        eng,
		Store:         models.NewStore(cfg.SaveDir),
		Logger:        logging.New("duel"),
		CallTimeout:   cfg.OracleTimeout,
		ImageMinScore: cfg.ImageMinScore,
	})
}
