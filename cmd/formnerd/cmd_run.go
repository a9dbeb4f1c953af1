package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formnerd/internal/config"
	"formnerd/internal/engine"
	"formnerd/internal/form"
	"formnerd/internal/store"
	"formnerd/internal/surface"
)

var (
	autoPlayback bool
	autoProceed  bool
)

// runCmd resolves one page's form against the knowledge base.
var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Fill the form at a URL from the knowledge base",
	Long: `Opens the URL in a browser, discovers fillable fields, and steps through
them one at a time. Each match is proposed on the terminal for approval
unless --auto is given.

A proceed-style button ("Next", "Continue") can be clicked automatically
after completion with --proceed. Submission-style buttons are never clicked
automatically, regardless of flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	runCmd.Flags().BoolVar(&autoPlayback, "auto", false, "apply matches without asking for approval")
	runCmd.Flags().BoolVar(&autoProceed, "proceed", false, "auto-click a safe proceed control on completion")
}

func runResolve(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Knowledge.DatabasePath = dbPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kb, err := store.NewSQLiteStore(cfg.Knowledge.DatabasePath)
	if err != nil {
		return fmt.Errorf("open knowledge base: %w", err)
	}
	defer kb.Close()

	browser := surface.NewBrowser(cfg.Browser)
	if err := browser.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() { _ = browser.Shutdown() }()

	logger.Info("opening page", zap.String("url", url))
	page, err := browser.OpenPage(ctx, url)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}

	coordinator := engine.NewCoordinator(engine.Config{
		Threshold:    cfg.Matching.Threshold,
		MinPromptLen: cfg.Matching.MinPromptLength,
		ProceedDelay: time.Duration(cfg.Session.ProceedDelayMs) * time.Millisecond,
	}, kb, newStdinApprover(os.Stdin, os.Stdout), logger)

	session := coordinator.Start(ctx, url, page, engine.Options{
		AutoPlayback: autoPlayback || cfg.Session.AutoPlayback,
		AutoProceed:  autoProceed || cfg.Session.AutoProceed,
	})

	go func() {
		for ev := range drainEvents(session) {
			if verbose || ev.Level != "debug" {
				fmt.Printf("  [%s] %s\n", ev.Level, ev.Message)
			}
		}
	}()

	select {
	case <-session.Done():
	case <-ctx.Done():
		session.Cancel()
		<-session.Done()
	}

	snap := session.Snapshot()
	fmt.Printf("\nSession %s: %s, %d applied, %d skipped of %d fields\n",
		snap.ID[:8], snap.State, snap.Processed, snap.Skipped, snap.FieldCount)
	if err := session.Err(); err != nil {
		return fmt.Errorf("session ended in error (surface %s, last index %d): %w",
			snap.SurfaceID, snap.CurrentIndex, err)
	}
	return nil
}

// drainEvents adapts the session event channel so the consumer loop ends
// when the session does.
func drainEvents(s *engine.Session) <-chan engine.Event {
	out := make(chan engine.Event)
	go func() {
		defer close(out)
		for {
			select {
			case ev := <-s.Events():
				out <- ev
			case <-s.Done():
				for {
					select {
					case ev := <-s.Events():
						out <- ev
					default:
						return
					}
				}
			}
		}
	}()
	return out
}

var _ form.Surface = (*surface.PageSurface)(nil)
