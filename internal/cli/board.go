package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/gesture"
)

// MutationResult is the JSON payload of commands that change the board.
type MutationResult struct {
	TaskID  string       `json:"taskId,omitempty"`
	Applied bool         `json:"applied"`
	Board   *board.Board `json:"board"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the board in the store if it does not exist",
		Long: `Create the board in the configured store.

The columns come from the config file (or the default To Do, In Progress,
Done layout). An existing board is left untouched.

Examples:
  kanban init
  kanban init --config board.yaml
  kanban init --db ./team.db --key team-board`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.Formatter(cmd)

			m, kv, cfg, err := rootOpts.OpenSession(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()

			existed := m.Rehydrated()
			if err := m.Save(ctx); err != nil {
				return f.Fail(err)
			}

			text := fmt.Sprintf("Initialized board %q in %s store %s", m.Key(), cfg.Storage.Driver, cfg.Storage.DSN)
			if existed {
				text = fmt.Sprintf("Board %q already exists in %s store %s", m.Key(), cfg.Storage.Driver, cfg.Storage.DSN)
			}
			return f.Result(text, map[string]interface{}{
				"key":     m.Key(),
				"created": !existed,
				"board":   m.Board(),
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Example: `  kanban show
  kanban show --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, kv, _, err := rootOpts.OpenSession(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			b := m.Board()
			return rootOpts.Formatter(cmd).Result(renderBoard(b), b)
		},
	}
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <column-id> <content...>",
		Short: "Add a task to the top of a column",
		Example: `  kanban create todo "write the release notes"
  kanban create in-progress fix flaky test`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := gesture.Event{
				Type:     gesture.TypeCreate,
				ColumnID: args[0],
				Content:  strings.Join(args[1:], " "),
			}
			return dispatchOne(rootOpts, cmd, ev, func(out gesture.Outcome) string {
				return fmt.Sprintf("Created task %s in %s", out.TaskID, args[0])
			})
		},
	}
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "edit <task-id> <content...>",
		Short:         "Replace the content of a task",
		Example:       `  kanban edit 01890a5d-ac96-7b4c-8f1e-3b2d5c6e7f80 "write the release notes for 1.2"`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := gesture.Event{
				Type:    gesture.TypeEdit,
				TaskID:  args[0],
				Content: strings.Join(args[1:], " "),
			}
			return dispatchOne(rootOpts, cmd, ev, func(out gesture.Outcome) string {
				return fmt.Sprintf("Edited task %s", out.TaskID)
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <task-id>",
		Short:         "Remove a task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := gesture.Event{Type: gesture.TypeDelete, TaskID: args[0]}
			return dispatchOne(rootOpts, cmd, ev, func(out gesture.Outcome) string {
				return fmt.Sprintf("Deleted task %s", out.TaskID)
			})
		},
	}
}

// MoveOptions holds flags for the move command.
type MoveOptions struct {
	*RootOptions
	FromColumn string
	FromIndex  int
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move <task-id> <column-id> [index]",
		Short: "Move a task to a position in a column",
		Long: `Move a task to index (default 0) of a column.

Within one column the task is removed first and then inserted, so index
refers to the list without the task. Across columns index refers to the
destination column as it is now.

By default the task's current position is looked up. Pass --from-column
and --from-index to state where you believe the task is; the move is
rejected with a conflict if the board disagrees.

Examples:
  kanban move 3f1c done
  kanban move 3f1c todo 2
  kanban move 3f1c done 0 --from-column todo --from-index 1`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index := 0
			if len(args) == 3 {
				n, err := strconv.Atoi(args[2])
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid index %q: must be an integer", args[2]))
				}
				index = n
			}

			ev := gesture.Event{
				Type:        gesture.TypeReorder,
				TaskID:      args[0],
				Destination: &gesture.Position{ColumnID: args[1], Index: index},
			}
			if opts.FromColumn != "" {
				if !cmd.Flags().Changed("from-index") {
					return NewExitError(ExitCommandError, "--from-column requires --from-index")
				}
				ev.Source = &gesture.Position{ColumnID: opts.FromColumn, Index: opts.FromIndex}
			}

			return dispatchOne(rootOpts, cmd, ev, func(out gesture.Outcome) string {
				if !out.Applied {
					return fmt.Sprintf("Task %s is already at %s[%d]", out.TaskID, args[1], index)
				}
				return fmt.Sprintf("Moved task %s to %s[%d]", out.TaskID, args[1], index)
			})
		},
	}

	cmd.Flags().StringVar(&opts.FromColumn, "from-column", "", "column the task is expected in")
	cmd.Flags().IntVar(&opts.FromIndex, "from-index", 0, "index the task is expected at")

	return cmd
}

// dispatchOne opens the session, applies ev and reports the outcome.
func dispatchOne(rootOpts *RootOptions, cmd *cobra.Command, ev gesture.Event, describe func(gesture.Outcome) string) error {
	ctx := cmd.Context()
	f := rootOpts.Formatter(cmd)

	m, kv, _, err := rootOpts.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	out, err := gesture.NewDispatcher(m, rootOpts.Logger()).Dispatch(ctx, ev)
	if err != nil {
		return f.Fail(err)
	}
	return f.Result(describe(out), MutationResult{
		TaskID:  out.TaskID,
		Applied: out.Applied,
		Board:   out.Board,
	})
}
