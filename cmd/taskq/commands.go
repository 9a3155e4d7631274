package main

import (
	"fmt"

	"github.com/UniQw/taskq"
	"github.com/spf13/cobra"
)

func (c *cli) addCmd() *cobra.Command {
	var title, desc, priority, status string
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a task",
		Example: `  taskq add --owner U1 --title "write report" --priority high`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := &taskq.Task{
				OwnerID:     c.owner,
				Title:       title,
				Description: desc,
				Priority:    taskq.Priority(priority),
				Status:      taskq.Status(status),
			}
			if err := c.app.svc.CreateTask(cmd.Context(), t); err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending, in_progress or completed (default pending)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var title, desc, priority, status string
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change fields of a task",
		Example: `  taskq update --owner U1 3f2a... --status completed`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := c.app.svc.GetTask(ctx, c.owner, args[0])
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				t.Title = title
			}
			if flags.Changed("description") {
				t.Description = desc
			}
			if flags.Changed("priority") {
				t.Priority = taskq.Priority(priority)
			}
			if flags.Changed("status") {
				t.Status = taskq.Status(status)
			}
			if err := c.app.svc.UpdateTask(ctx, &t); err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending, in_progress or completed")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.svc.DeleteTask(cmd.Context(), c.owner, args[0]); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.svc.GetTask(cmd.Context(), c.owner, args[0])
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var (
		status, priority string
		page, size       int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, one page at a time",
		Long: `List the owner's tasks ordered by priority, newest first within a
priority. Pages are served from the cache until the owner's next write.`,
		Example: `  taskq list --owner U1 --status pending --page 2 --size 20`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilter(status, priority)
			if err != nil {
				return err
			}
			res, err := c.app.svc.ListWithCache(cmd.Context(), c.owner, f, page, size)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only tasks with this status")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only tasks with this priority")
	cmd.Flags().IntVar(&page, "page", taskq.DefaultPage, "page number, from 1")
	cmd.Flags().IntVar(&size, "size", taskq.DefaultPageSize, fmt.Sprintf("page size, at most %d", taskq.MaxPageSize))
	return cmd
}

func (c *cli) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show pending tasks in the order they should be worked on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := c.app.svc.Scheduled(cmd.Context(), c.owner)
			if err != nil {
				return fmt.Errorf("schedule: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), tasks)
		},
	}
}

func (c *cli) invalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Drop every cached list page of the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.svc.OnMutation(cmd.Context(), c.owner); err != nil {
				return fmt.Errorf("invalidate: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"invalidated": c.owner})
		},
	}
}
