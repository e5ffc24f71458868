// Package discovery answers "which units can you run?" on the receiving side.
//
// A provider exposes its runnable units as rows with one AvailableUnitIDsColumn
// column; UnitIDs turns such rows into the list carried by a discovery result.
package discovery

import (
	"database/sql"
	"fmt"
)

// AvailableUnitIDsColumn is the column a provider must name its unit IDs by.
const AvailableUnitIDsColumn = "availableUnitIds"

// Rows is the row/column source read by UnitIDs. *sql.Rows satisfies it.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// UnitIDs collects the AvailableUnitIDsColumn value of every row, in row
// order. A source without that column yields an empty list, as does a source
// with no rows. NULL cells are skipped.
func UnitIDs(rows Rows) ([]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	idx := -1
	for i, c := range cols {
		if c == AvailableUnitIDsColumn {
			idx = i
			break
		}
	}
	ids := []string{}
	if idx == -1 {
		return ids, nil
	}

	dest := make([]any, len(cols))
	for i := range dest {
		if i == idx {
			dest[i] = new(sql.NullString)
		} else {
			dest[i] = new(any)
		}
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan unit id: %w", err)
		}
		if id := dest[idx].(*sql.NullString); id.Valid {
			ids = append(ids, id.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
