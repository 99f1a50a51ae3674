package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/intervue/internal/bootstrap"
	"github.com/okian/intervue/internal/config"
	"github.com/okian/intervue/pkg/logger"
)

// UserEnv supplies the acting user when --user is not given.
const UserEnv = "INTERVUE_USER"

var errNoUser = errors.New("acting user is required (use --user or " + UserEnv + ")")

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	out    io.Writer
	user   string
	engine *bootstrap.Engine
}

// execute runs one invocation and releases the engine even when the
// command fails.
func execute(ctx context.Context, out io.Writer, args []string) error {
	c := &cli{out: out}
	root := c.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close(context.WithoutCancel(ctx)))
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "intervuectl",
		Short:         "Interview bidding and lifecycle engine CLI",
		Long:          "intervuectl applies as interviewer, bids on interviews and submits feedback through the Interview Service configured by INTERVUE_* variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&c.user, "user", "u", "", "Acting user id (defaults to "+UserEnv+")")

	root.AddCommand(
		c.attributesCmd(),
		c.eligibilityCmd(),
		c.applyCmd(),
		c.toggleCmd(),
		c.biddableCmd(),
		c.biddedCmd(),
		c.bidCmd(),
		c.currentCmd(),
		c.feedbackCmd(),
		c.historyCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	if c.user == "" {
		c.user = strings.TrimSpace(os.Getenv(UserEnv))
	}
	if c.user == "" {
		return errNoUser
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(cfg.LogFormat),
		logger.WithOutput(os.Stderr),
		logger.WithSource(false),
	); err != nil {
		return err
	}

	c.engine, err = bootstrap.Build(ctx, cfg, logger.Named("intervuectl"))
	return err
}

func (c *cli) close(ctx context.Context) error {
	if c.engine == nil {
		return nil
	}
	err := c.engine.Close(ctx)
	c.engine = nil
	return err
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
