package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okian/intervue/internal/domain/model"
)

type listFunc func(ctx context.Context, userID string, page, limit int, scope string) ([]model.Interview, error)

func (c *cli) listCmd(use, short string, fn func() listFunc) *cobra.Command {
	var (
		page, limit int
		scope       string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := fn()(cmd.Context(), c.user, page, limit, scope)
			if err != nil {
				return err
			}
			return c.print(items)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (0 uses page_limit)")
	cmd.Flags().StringVar(&scope, "scope", "", "Approved attribute id, or ALL")
	return cmd
}

func (c *cli) biddableCmd() *cobra.Command {
	return c.listCmd("biddable", "List interviews open for bidding", func() listFunc {
		return c.engine.Service.ListBiddable
	})
}

func (c *cli) biddedCmd() *cobra.Command {
	return c.listCmd("bidded", "List interviews you have bid on", func() listFunc {
		return c.engine.Service.ListBidded
	})
}

func (c *cli) bidCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "bid INTERVIEW_ID FEE",
		Short: "Place a bid on an interview",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := c.engine.Service.PlaceBid(cmd.Context(), c.user, args[0], args[1], description)
			if err != nil {
				return err
			}
			return c.print(it)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Bid description")
	return cmd
}
