package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the duel rulebook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), models.Rulebook())
		return err
	},
}
