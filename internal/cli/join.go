// join.go implements the "drill join" command: the interactive interview.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/drill-dev/drill/internal/cache"
	"github.com/drill-dev/drill/internal/interview"
	"github.com/drill-dev/drill/internal/log"
	"github.com/drill-dev/drill/internal/transport"
	"github.com/drill-dev/drill/internal/tui"
)

var joinCmd = &cobra.Command{
	Use:   "join <session-id>",
	Short: "Join an interview session",
	Long: `Join the interview session with the given id. Previously submitted
answers are replayed and the session resumes at the first unanswered
question. Draft answers are autosaved locally and restored on reload.`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func runJoin(cmd *cobra.Command, args []string) error {
	if !tui.IsTTY() {
		return fmt.Errorf("join needs a terminal; use 'drill status %s' instead", args[0])
	}

	ctrl, cleanup, err := buildController(args[0])
	if err != nil {
		return err
	}
	defer cleanup()
	defer ctrl.Close()

	return tui.Run(tui.NewModel(ctrl))
}

// buildController wires config, transport, draft cache, and event log
// into a controller for the given session. The returned cleanup closes
// the draft store.
func buildController(sessionID string) (*interview.Controller, func(), error) {
	home, err := homeDir()
	if err != nil {
		return nil, nil, err
	}

	// Config is optional; defaults cover a local server.
	cfg := loadConfig()

	client := transport.NewClient(cfg.Server.BaseURL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)

	drillDir := filepath.Join(home, ".drill")
	if err := os.MkdirAll(drillDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating .drill directory: %w", err)
	}

	drafts, err := cache.NewStore(filepath.Join(drillDir, "drafts.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening draft cache: %w", err)
	}

	logger, err := log.NewLogger(home)
	if err != nil {
		_ = drafts.Close()
		return nil, nil, fmt.Errorf("creating event log: %w", err)
	}

	opts := interview.Options{
		QuestionDuration: time.Duration(cfg.Interview.QuestionSeconds) * time.Second,
		AutoAdvanceDelay: time.Duration(cfg.Interview.AutoAdvanceDelaySeconds) * time.Second,
		AutosaveDebounce: time.Duration(cfg.Interview.AutosaveDebounceMs) * time.Millisecond,
		AdvanceScore:     cfg.Interview.AdvanceScore,
		FollowupScore:    cfg.Interview.FollowupScore,
	}

	ctrl := interview.NewController(client, drafts, logger, sessionID, opts)

	if cfg.Push.Enabled && cfg.Push.URL != "" {
		push := transport.NewPushChannel(cfg.Push.URL, cfg.Push.UserID,
			time.Duration(cfg.Push.ReconnectDelaySeconds)*time.Second)
		go push.Run()
		go func() {
			for ev := range push.Events() {
				if update, ok := transport.DecodePush(ev); ok {
					ctrl.ApplyPush(update)
				}
			}
		}()
		go func() {
			for range push.Reconnects() {
				ctrl.ApplyPush(interview.PushUpdate{Kind: interview.PushReconnected})
			}
		}()
		return ctrl, func() { push.Close(); _ = drafts.Close() }, nil
	}

	return ctrl, func() { _ = drafts.Close() }, nil
}
