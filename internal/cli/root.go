package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	apiBaseURL string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("LMSC_CONFIG")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envAPI := os.Getenv("LMSC_API")

	cmd := &cobra.Command{
		Use:   "lmsc",
		Short: "Client for the LMSC lesson platform: lessons, quizzes, tasks and marks",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&apiBaseURL, "api", envAPI, "API base URL (overrides config; empty runs the offline demo catalog)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newLessonsCmd())
	cmd.AddCommand(newLessonCmd())
	cmd.AddCommand(newQuizCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newDashboardCmd())
	return cmd
}
