package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/UniQw/taskq"
	"github.com/UniQw/taskq/internal/config"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every subcommand of one root command.
type cli struct {
	envFile string
	owner   string
	root    *cobra.Command
	app     *app
}

func newCLI() *cli {
	c := &cli{}
	c.root = &cobra.Command{
		Use:   "taskq",
		Short: "Prioritized task lists with a read-through cache",
		Long: `taskq stores per-owner tasks, serves filtered and paginated lists
through a cache that is invalidated on every write, and orders pending
work by priority and age.

Configuration comes from the environment (or a .env file):
  TASKQ_STORE, TASKQ_SQLITE_PATH, DATABASE_URL, REDIS_URL,
  TASKQ_CACHE_TTL, TASKQ_SINGLE_FLIGHT, TASKQ_BREAKER_FAILURES,
  TASKQ_BREAKER_TIMEOUT, LOG_LEVEL`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	c.root.PersistentFlags().StringVar(&c.envFile, "env", "", "env file to load instead of ./.env")
	c.root.PersistentFlags().StringVarP(&c.owner, "owner", "o", "", "owner whose tasks to operate on")

	c.root.AddCommand(
		c.addCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.getCmd(),
		c.listCmd(),
		c.scheduleCmd(),
		c.invalidateCmd(),
	)
	return c
}

// execute runs the command line and releases the wired app whether or not
// the command succeeded.
func (c *cli) execute(ctx context.Context) error {
	defer c.closeApp()
	return c.root.ExecuteContext(ctx)
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	if !needsApp(cmd) {
		return nil
	}
	if c.owner == "" {
		return errors.New("--owner is required")
	}
	var (
		cfg *config.Config
		err error
	)
	if c.envFile != "" {
		cfg, err = config.LoadFile(c.envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.app, err = newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	return err
}

func (c *cli) closeApp() {
	if c.app != nil {
		c.app.close()
		c.app = nil
	}
}

// needsApp reports whether cmd touches tasks. Help and the generated
// completion commands run without an owner or a store.
func needsApp(cmd *cobra.Command) bool {
	for p := cmd; p != nil; p = p.Parent() {
		switch p.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func printJSON(w io.Writer, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func parseFilter(status, priority string) (taskq.Filter, error) {
	var f taskq.Filter
	if status != "" {
		s, err := taskq.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if priority != "" {
		p, err := taskq.ParsePriority(priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	return f, nil
}
