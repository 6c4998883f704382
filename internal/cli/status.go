// status.go implements the "drill status" command showing session progress.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/drill-dev/drill/internal/config"
	"github.com/drill-dev/drill/internal/interview"
	"github.com/drill-dev/drill/internal/transport"
)

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show session progress",
	Long: `Display the status of an interview session without joining it:
how many questions exist, how many have answers, and where the session
would resume.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id := args[0]
	sess, err := client.Session(ctx, id)
	if err != nil {
		if interview.IsNotFound(err) {
			return fmt.Errorf("session %s not found (it may have expired)", id)
		}
		return fmt.Errorf("fetching session: %w", err)
	}

	questions, err := client.Questions(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching questions: %w", err)
	}
	questions = interview.DedupQuestions(questions)

	hist, err := client.History(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}

	answered := make(map[string]bool)
	scores := make(map[string]*interview.Feedback)
	for _, rec := range hist.Answers {
		answered[rec.QuestionID] = true
		if rec.Feedback != nil {
			scores[rec.QuestionID] = rec.Feedback
		}
	}
	count := 0
	for _, q := range questions {
		if answered[q.ID] {
			count++
		}
	}

	fmt.Printf("Session %s\n", sess.ID)
	fmt.Printf("Status: %s\n\n", sess.Status)

	for i, row := range questionRows(interview.GroupQuestions(questions)) {
		q := row.Question
		mark := " "
		if answered[q.ID] {
			mark = "✓"
		}
		label := row.Label
		if Verbose() {
			if fb := scores[q.ID]; fb != nil {
				label = fmt.Sprintf("%s (%.1f/10)", label, fb.OverallScore)
			}
		}
		fmt.Printf("  %s %2d. [%s/%s] %s\n", mark, i+1, q.Category, q.Difficulty, label)
	}

	fmt.Println()
	fmt.Printf("Progress: %d/%d answered", count, len(questions))
	if sess.Status != interview.StatusCompleted && len(questions) > 0 {
		fmt.Printf(", resumes at question %d", interview.ResumeIndex(count, len(questions))+1)
	}
	fmt.Println()

	return nil
}

// questionRow is one display line in the status listing.
type questionRow struct {
	Question interview.Question
	Label    string
}

// questionRows flattens grouped questions into ordered display rows,
// labelling each part of a compound question by its position within the
// group.
func questionRows(groups []interview.QuestionGroup) []questionRow {
	var rows []questionRow
	for _, g := range groups {
		for i, q := range g.Sub {
			label := q.Text
			if len(g.Sub) > 1 {
				label = fmt.Sprintf("%s (part %d/%d)", label, i+1, len(g.Sub))
			}
			rows = append(rows, questionRow{Question: q, Label: label})
		}
	}
	return rows
}

// newClient builds a REST client from config (defaults when absent).
func newClient() (*transport.Client, error) {
	cfg := loadConfig()
	return transport.NewClient(cfg.Server.BaseURL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second), nil
}

// loadConfig reads the user config, falling back to defaults.
func loadConfig() *config.Config {
	home, err := homeDir()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.ReadConfig(home)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}
