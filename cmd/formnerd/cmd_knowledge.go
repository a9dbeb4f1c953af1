// Knowledge base CLI commands: listing and recording question/answer pairs.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"formnerd/internal/config"
	"formnerd/internal/form"
	"formnerd/internal/store"
)

var (
	kAnswerType string
)

// knowledgeCmd manages the question/answer knowledge base
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "View and record knowledge base entries",
	Long: `View and record the question/answer pairs formnerd matches against.

Subcommands:
  list  - List stored entries
  add   - Record or replace an answer for a question`,
	RunE: runKnowledgeList,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored entries",
	RunE:  runKnowledgeList,
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Record or replace an answer for a question",
	Args:  cobra.ExactArgs(2),
	RunE:  runKnowledgeAdd,
}

func init() {
	knowledgeAddCmd.Flags().StringVar(&kAnswerType, "type", "text", "answer type: exact, choice, or text")
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeAddCmd)
}

func openKnowledgeStore() (*store.SQLiteStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Knowledge.DatabasePath = dbPath
	}
	return store.NewSQLiteStore(cfg.Knowledge.DatabasePath)
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kb, err := openKnowledgeStore()
	if err != nil {
		return err
	}
	defer kb.Close()

	entries, err := kb.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No knowledge entries found.")
		return nil
	}

	fmt.Println("Knowledge Base")
	fmt.Println(strings.Repeat("─", 60))
	for i, e := range entries {
		fmt.Printf("%2d. [%-6s] %s => %q  (%s)\n",
			i+1, e.AnswerType, truncateStr(e.Question, 48), e.Answer,
			e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	at := form.AnswerType(kAnswerType)
	switch at {
	case form.AnswerExact, form.AnswerChoice, form.AnswerText:
	default:
		return fmt.Errorf("invalid answer type %q (want exact, choice, or text)", kAnswerType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kb, err := openKnowledgeStore()
	if err != nil {
		return err
	}
	defer kb.Close()

	if err := kb.UpsertByQuestion(ctx, args[0], args[1], at); err != nil {
		return err
	}
	fmt.Printf("Recorded answer for %q\n", store.NormalizeQuestion(args[0]))
	return nil
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
