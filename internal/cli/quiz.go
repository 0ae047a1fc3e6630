package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lmsc-client/internal/domain"
)

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz operations",
	}
	cmd.AddCommand(newQuizSubmitCmd())
	return cmd
}

func newQuizSubmitCmd() *cobra.Command {
	var rawAnswers []string

	cmd := &cobra.Command{
		Use:   "submit <lessonID>",
		Short: "Submit quiz answers for a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			identity, ok := rt.session.Restore(cmd.Context())
			if !ok {
				return fmt.Errorf("%w: log in first", domain.ErrAuthentication)
			}

			answers := make(map[string]domain.Option, len(rawAnswers))
			for _, raw := range rawAnswers {
				questionID, option, found := strings.Cut(raw, "=")
				if !found || questionID == "" {
					return fmt.Errorf("%w: answer %q, want QUESTION=OPTION", domain.ErrValidation, raw)
				}
				answers[questionID] = domain.Option(option)
			}

			attempt, err := rt.engine.SubmitQuiz(cmd.Context(), identity.ID, args[0], answers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "quiz submitted, score %d%%\n", attempt.Score)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rawAnswers, "answer", nil, "answer as QUESTION=OPTION (repeatable)")
	return cmd
}
