package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lmsc-client/internal/domain"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task submission and grading",
	}
	cmd.AddCommand(newTaskSubmitCmd())
	cmd.AddCommand(newTaskMarkCmd())
	return cmd
}

func newTaskSubmitCmd() *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "submit <taskID>",
		Short: "Submit your work for a lesson task",
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

			sub, err := rt.engine.SubmitTask(cmd.Context(), identity.ID, args[0], content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task submitted (%s)\n", sub.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "submission text")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newTaskMarkCmd() *cobra.Command {
	var mark int

	cmd := &cobra.Command{
		Use:   "mark <submissionID>",
		Short: "Grade a task submission (teacher)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			if _, ok := rt.session.Restore(cmd.Context()); !ok {
				return fmt.Errorf("%w: log in first", domain.ErrAuthentication)
			}
			if role, _ := rt.session.Role(); role != domain.RoleTeacher {
				return fmt.Errorf("%w: marking requires the teacher role", domain.ErrAuthentication)
			}

			sub, err := rt.engine.SetMark(cmd.Context(), args[0], mark)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submission %s marked %d/100\n", sub.ID, mark)
			return nil
		},
	}
	cmd.Flags().IntVar(&mark, "mark", -1, "mark between 0 and 100")
	_ = cmd.MarkFlagRequired("mark")
	return cmd
}
