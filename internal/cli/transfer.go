package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/gesture"
	"github.com/roach88/kanban/internal/snapshot"
)

// ApplyResult is the JSON payload of the apply command.
type ApplyResult struct {
	Events  int          `json:"events"`
	Applied int          `json:"applied"`
	TaskIDs []string     `json:"taskIds"`
	Board   *board.Board `json:"board"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <events.jsonl|->",
		Short: "Apply a stream of events to the board",
		Long: `Apply events from a JSON Lines file (or stdin with "-"), one event per line.

Events are applied in order and the board is persisted after each one.
The first rejected event stops the run; earlier events stay applied.

Event forms:
  {"type":"create","columnId":"todo","content":"write docs"}
  {"type":"edit","taskId":"...","content":"write better docs"}
  {"type":"delete","taskId":"..."}
  {"type":"reorder","taskId":"...","source":{"columnId":"todo","index":0},"destination":{"columnId":"done","index":0}}

A reorder with "destination": null is a drop outside any column and
changes nothing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.Formatter(cmd)

			events, err := readEventsArg(cmd, args[0])
			if err != nil {
				return err
			}

			m, kv, _, err := rootOpts.OpenSession(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()

			outcomes, dispatchErr := gesture.NewDispatcher(m, rootOpts.Logger()).DispatchAll(ctx, events)
			applied := 0
			ids := make([]string, 0, len(outcomes))
			for _, out := range outcomes {
				if out.Applied {
					applied++
				}
				ids = append(ids, out.TaskID)
			}
			f.VerboseLog("applied %d of %d events", applied, len(events))

			if dispatchErr != nil {
				return f.Fail(dispatchErr)
			}
			text := fmt.Sprintf("Applied %d of %d events (%d changed the board)", len(outcomes), len(events), applied)
			return f.Result(text, ApplyResult{
				Events:  len(events),
				Applied: applied,
				TaskIDs: ids,
				Board:   m.Board(),
			})
		},
	}
}

func readEventsArg(cmd *cobra.Command, path string) ([]gesture.Event, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open events file", err)
		}
		defer file.Close()
		r = file
	}
	events, err := gesture.ReadEvents(r)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read events", err)
	}
	return events, nil
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board snapshot",
		Long: `Write the current board as a versioned snapshot:

  {"version":1,"board":{...}}

The output is canonical: the same board always exports to the same bytes.`,
		Example: `  kanban export > board.json
  kanban export -o board.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, kv, _, err := rootOpts.OpenSession(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			data, err := snapshot.Encode(m.Board())
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			data = append(data, '\n')

			if opts.Output == "" || opts.Output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write snapshot", err)
			}
			rootOpts.Formatter(cmd).VerboseLog("wrote %d bytes to %s", len(data), opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json|->",
		Short: "Replace the board with a snapshot",
		Long: `Replace the stored board with the board in a snapshot file.

Both versioned snapshots and bare board objects written by earlier
releases are accepted. The snapshot must satisfy the board invariants.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.Formatter(cmd)

			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read snapshot", err)
			}

			b, err := snapshot.Decode(data)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid snapshot", err)
			}

			m, kv, _, err := rootOpts.OpenSession(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()

			current, err := m.Replace(ctx, b)
			if err != nil {
				return f.Fail(err)
			}
			text := fmt.Sprintf("Imported board with %d tasks in %d columns", current.TaskCount(), len(current.ColumnOrder))
			return f.Result(text, current)
		},
	}
}
