package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) attributesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attributes",
		Short: "List verified attributes and their eligibility views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := c.engine.Service.LoadAttributes(cmd.Context(), c.user)
			if err != nil {
				return err
			}
			return c.print(reg)
		},
	}
}

func (c *cli) eligibilityCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "List attributes of a kind that may still apply as interviewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			attrs, err := c.engine.Service.Eligibility(cmd.Context(), c.user, kind)
			if err != nil {
				return err
			}
			return c.print(attrs)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "SKILL", "Attribute kind: SKILL or DOMAIN")
	return cmd
}

func (c *cli) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply ATTRIBUTE_ID CHARGE",
		Short: "Apply as interviewer for an attribute at a per-interview charge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			charge, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			a, err := c.engine.Service.Apply(cmd.Context(), c.user, args[0], charge)
			if err != nil {
				return err
			}
			return c.print(a)
		},
	}
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ATTRIBUTE_ID",
		Short: "Flip the interviewer availability of an approved attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine.Service.ToggleActive(cmd.Context(), c.user, args[0])
			if err != nil {
				return err
			}
			return c.print(a)
		},
	}
}
