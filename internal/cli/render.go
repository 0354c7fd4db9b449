package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/kanban/internal/board"
)

// renderBoard draws b as text, one block per column:
//
//	To Do (todo) [2]
//	  0  3f1c...  write docs
//	  1  9a2e...  review PR
func renderBoard(b *board.Board) string {
	var sb strings.Builder
	for i, colID := range b.ColumnOrder {
		if i > 0 {
			sb.WriteByte('\n')
		}
		col := b.Columns[colID]
		fmt.Fprintf(&sb, "%s (%s) [%d]\n", col.Title, col.ID, len(col.TaskIDs))
		if len(col.TaskIDs) == 0 {
			sb.WriteString("  (empty)\n")
			continue
		}
		for idx, id := range col.TaskIDs {
			fmt.Fprintf(&sb, "  %d  %s  %s\n", idx, id, b.Tasks[id].Content)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
