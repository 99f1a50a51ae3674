package main

import (
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/lifecycle"
)

func (c *cli) currentCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "current",
		Short: "List pending and scheduled interviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := c.engine.Service.ListCurrent(cmd.Context(), c.user, role)
			if err != nil {
				return err
			}
			return c.print(items)
		},
	}
	cmd.Flags().StringVar(&role, "role", "interviewee", "Role: interviewee, interviewer or creator")
	return cmd
}

func (c *cli) feedbackCmd() *cobra.Command {
	var (
		role     string
		rating   int
		feedback string
		action   string
	)
	cmd := &cobra.Command{
		Use:   "feedback INTERVIEW_ID",
		Short: "Rate a past interview and confirm or reject it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, ok := lifecycle.ParseAction(action)
			if !ok {
				return fmt.Errorf("unknown action %q: use confirm or reject", action)
			}
			f := lifecycle.Feedback{Feedback: feedback, Action: act}
			if cmd.Flags().Changed("rating") {
				f.Rating = &rating
			}
			// The interview must be among the loaded current interviews.
			if _, err := c.engine.Service.ListCurrent(cmd.Context(), c.user, role); err != nil {
				return err
			}
			it, err := c.engine.Service.SubmitFeedback(cmd.Context(), c.user, args[0], f)
			if err != nil {
				return err
			}
			return c.print(it)
		},
	}
	cmd.Flags().StringVar(&role, "role", "interviewee", "Role the interview is listed under")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Written feedback")
	cmd.Flags().StringVar(&action, "action", "confirm", "confirm or reject")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var q service.HistoryQuery
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed and cancelled interviews by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := c.engine.Service.History(cmd.Context(), c.user, q)
			if err != nil {
				return err
			}
			return c.print(groups)
		},
	}
	cmd.Flags().StringVar(&q.Role, "role", "interviewee", "Role: interviewee, interviewer or creator")
	cmd.Flags().StringVar(&q.Category, "category", "", "Restrict to one category")
	cmd.Flags().StringVar(&q.Type, "type", "", "Talent type: All, Skills or Domain")
	cmd.Flags().StringVarP(&q.Search, "query", "q", "", "Case-insensitive search")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "asc or desc")
	return cmd
}
