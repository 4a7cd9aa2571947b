// duel is the Duelul Ideilor command: play in the terminal, serve the HTTP
// API for the browser client, or print the rulebook.
//
// Usage:
//
//	duel play  [--save-dir=<dir>] [--log-file=<path>]
//	duel serve [--addr=:8080]
//	duel rules
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tatianab/duelul-ideilor/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	saveDir  string
	model    string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "duel",
	Short: "Duelul Ideilor, a duel of annihilating statements against an AI",
	Long: "Duelul Ideilor is a two-party word duel. Each statement must annihilate\n" +
		"the previous one; a Gemini judge scores both sides and replies for the AI.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.saveDir, "save-dir", "", "Directory for preferences, images and reports (overrides DUEL_SAVE_DIR)")
	f.StringVar(&rootFlags.model, "model", "", "Gemini model (overrides DUEL_MODEL)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides DUEL_LOG_LEVEL)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.Version = version
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if rootFlags.saveDir != "" {
		cfg.SaveDir = rootFlags.saveDir
	}
	if rootFlags.model != "" {
		cfg.Model = rootFlags.model
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
