// finish.go implements the "drill finish" command for explicitly ending a
// session.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/drill-dev/drill/internal/interview"
)

var finishCmd = &cobra.Command{
	Use:   "finish <session-id>",
	Short: "End an interview session",
	Long: `Explicitly finish the session with the given id. Completion is never
implied by answering every question; this (or the in-session finish key)
is the only way to reach the completed state from the client.`,
	Args: cobra.ExactArgs(1),
	RunE: runFinish,
}

func runFinish(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Finish(ctx, args[0]); err != nil {
		if interview.IsNotFound(err) {
			return fmt.Errorf("session %s not found", args[0])
		}
		return fmt.Errorf("finishing session: %w", err)
	}

	fmt.Printf("Session %s finished.\n", args[0])
	return nil
}
