package google

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Header is the first row of the export sheet. Column A holds the
// transaction ID and is the lookup key for updates and deletes.
var Header = []any{"ID", "Date", "Created At", "Type", "Category", "Description", "Amount", "User"}

const lastColumn = "H"

// transactionRow renders tx in Header order. The amount carries its sign so
// sheet formulas can sum the column directly.
func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.CreatedAt.Format(time.RFC3339),
		string(tx.Type),
		tx.Category,
		tx.Description,
		tx.SignedAmount().StringFixed(2),
		tx.UserID,
	}
}

func emptyRow() []any {
	row := make([]any, len(Header))
	for i := range row {
		row[i] = ""
	}
	return row
}

// findRow returns the 1-based sheet row whose first cell equals id, or 0.
func findRow(values [][]any, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, lastColumn, row)
}

func columnRange(sheet, col string) string {
	return fmt.Sprintf("%s!%s:%s", quoteSheet(sheet), col, col)
}

// quoteSheet wraps names containing spaces or punctuation in single quotes,
// as A1 notation requires.
func quoteSheet(name string) string {
	if strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) < 0 {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
