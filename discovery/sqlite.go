package discovery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrUnitNotFound is returned when a unit is not in the catalog.
var ErrUnitNotFound = errors.New("unit not found")

// Unit is one catalog entry.
type Unit struct {
	UnitID    string    `json:"unit_id"`
	Title     string    `json:"title,omitempty"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog is the SQLite-backed list of units this application can run.
type Catalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens the catalog at dsn and creates its schema.
func NewSQLiteCatalog(dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to an in-memory database sees its own empty database.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS units (
			unit_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			available INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_units_available ON units(available, unit_id)`,
	}
	for _, m := range migrations {
		if _, err := c.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Register inserts unit or replaces the title and availability of an
// existing entry. CreatedAt is set on first insert only.
func (c *Catalog) Register(ctx context.Context, unit Unit) error {
	if unit.UnitID == "" {
		return errors.New("unit_id is required")
	}
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO units (unit_id, title, available, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(unit_id) DO UPDATE SET title = excluded.title, available = excluded.available`,
		unit.UnitID, unit.Title, unit.Available, unit.CreatedAt)
	return err
}

// SetAvailable toggles whether unitID is offered to discovery queries.
func (c *Catalog) SetAvailable(ctx context.Context, unitID string, available bool) error {
	res, err := c.db.ExecContext(ctx, `UPDATE units SET available = ? WHERE unit_id = ?`, available, unitID)
	if err != nil {
		return err
	}
	return expectOne(res, unitID)
}

// Remove deletes unitID from the catalog.
func (c *Catalog) Remove(ctx context.Context, unitID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM units WHERE unit_id = ?`, unitID)
	if err != nil {
		return err
	}
	return expectOne(res, unitID)
}

// Get retrieves a unit by ID.
func (c *Catalog) Get(ctx context.Context, unitID string) (*Unit, error) {
	var u Unit
	err := c.db.QueryRowContext(ctx,
		`SELECT unit_id, title, available, created_at FROM units WHERE unit_id = ?`,
		unitID).Scan(&u.UnitID, &u.Title, &u.Available, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Has reports whether unitID is registered and available.
func (c *Catalog) Has(ctx context.Context, unitID string) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM units WHERE unit_id = ? AND available = 1`, unitID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every unit, available or not, ordered by ID.
func (c *Catalog) List(ctx context.Context) ([]Unit, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT unit_id, title, available, created_at FROM units ORDER BY unit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []Unit{}
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.UnitID, &u.Title, &u.Available, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// AvailableUnitIDs answers a discovery query. The query names its column
// AvailableUnitIDsColumn so the rows are read the same way as any other
// provider's.
func (c *Catalog) AvailableUnitIDs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT unit_id AS `+AvailableUnitIDsColumn+` FROM units WHERE available = 1 ORDER BY unit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return UnitIDs(rows)
}

func expectOne(res sql.Result, unitID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	return nil
}
