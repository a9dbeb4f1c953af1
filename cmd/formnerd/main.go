// Package main implements the formnerd CLI: a semi-supervised form autofill
// engine that proposes previously-given answers for newly-encountered form
// questions and applies them only after approval.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formnerd/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string

	// Logger
	logger *zap.Logger
)

const version = "0.3.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "formnerd",
	Short: "formnerd - semi-supervised form autofill engine",
	Long: `formnerd fills long, repetitive online forms from a knowledge base of
previously-given answers.

It discovers fillable fields on a page, derives a natural-language question
for each, matches it against stored question/answer pairs by token-set
similarity, and applies the best answer after your approval. Submission-like
controls are never triggered automatically.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the formnerd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("formnerd %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to knowledge database (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
