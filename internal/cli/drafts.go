// drafts.go implements the "drill drafts" commands for the local answer
// cache.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/drill-dev/drill/internal/cache"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Manage locally saved answer drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List questions with a saved draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDrafts()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ids, err := store.List(args[0])
		if err != nil {
			return fmt.Errorf("listing drafts: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No drafts saved for this session.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var draftsClearCmd = &cobra.Command{
	Use:   "clear <session-id>",
	Short: "Delete all drafts for a session",
	Long: `Delete every locally saved draft for the given session. Drafts are
never cleared automatically; this is the explicit action the autosave
contract reserves for the user.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDrafts()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Clear(args[0]); err != nil {
			return fmt.Errorf("clearing drafts: %w", err)
		}
		fmt.Printf("Cleared drafts for session %s.\n", args[0])
		return nil
	},
}

// openDrafts opens the shared draft database under ~/.drill.
func openDrafts() (*cache.Store, error) {
	home, err := homeDir()
	if err != nil {
		return nil, err
	}
	store, err := cache.NewStore(filepath.Join(home, ".drill", "drafts.db"))
	if err != nil {
		return nil, fmt.Errorf("opening draft cache: %w", err)
	}
	return store, nil
}

func init() {
	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsClearCmd)
}
