package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/canvasundo/pkg/scene"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteDiagramRepository implements DiagramRepository using SQLite storage.
// Cells are stored one row each with their attributes as JSON.
type SQLiteDiagramRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ DiagramRepository = (*SQLiteDiagramRepository)(nil)

// NewSQLiteDiagramRepository opens (or creates) the database at dbPath.
func NewSQLiteDiagramRepository(dbPath string) (*SQLiteDiagramRepository, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitializeDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &SQLiteDiagramRepository{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (r *SQLiteDiagramRepository) Close() error {
	return r.db.Close()
}

// Save persists a diagram, replacing all previously stored cells.
func (r *SQLiteDiagramRepository) Save(doc *scene.Document) error {
	if doc == nil {
		return fmt.Errorf("cannot save nil diagram")
	}
	if doc.ID == "" {
		return fmt.Errorf("diagram ID cannot be empty")
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid diagram: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO diagrams (id, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, doc.ID, doc.Name, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save diagram: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM cells WHERE diagram_id = ?", doc.ID); err != nil {
		return fmt.Errorf("failed to clear cells: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO cells (diagram_id, cell_id, kind, attributes) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, cell := range doc.Cells {
		attrs := cell.Attributes
		if attrs == nil {
			attrs = scene.Attributes{}
		}
		data, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes of %s: %w", cell.ID, err)
		}
		if _, err := stmt.Exec(doc.ID, cell.ID, string(cell.Kind), string(data)); err != nil {
			return fmt.Errorf("failed to save cell %s: %w", cell.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load retrieves a diagram by ID. Cells are returned ordered by ID.
//
// Attributes are stored as JSON, which does not keep the difference between
// integers and floats. Every number with no fractional part is loaded as an
// int, so a float attribute saved as 2.0 comes back as int 2.
func (r *SQLiteDiagramRepository) Load(id string) (*scene.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("diagram ID cannot be empty")
	}

	doc := &scene.Document{ID: id}
	err := r.db.QueryRow("SELECT name FROM diagrams WHERE id = ?", id).Scan(&doc.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDiagramNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diagram: %w", err)
	}

	rows, err := r.db.Query(
		"SELECT cell_id, kind, attributes FROM cells WHERE diagram_id = ? ORDER BY cell_id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	doc.Cells = make([]scene.Cell, 0)
	for rows.Next() {
		var cell scene.Cell
		var kind, attrJSON string
		if err := rows.Scan(&cell.ID, &kind, &attrJSON); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		cell.Kind = scene.Kind(kind)

		var raw map[string]any
		if err := json.Unmarshal([]byte(attrJSON), &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes of %s: %w", cell.ID, err)
		}
		cell.Attributes = scene.Attributes{}
		if attrs, ok := normalizeNumbers(raw).(map[string]any); ok && attrs != nil {
			cell.Attributes = attrs
		}
		doc.Cells = append(doc.Cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cells: %w", err)
	}

	return doc, nil
}

// Delete removes a diagram and its cells.
func (r *SQLiteDiagramRepository) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("diagram ID cannot be empty")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM cells WHERE diagram_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete cells: %w", err)
	}

	result, err := tx.Exec("DELETE FROM diagrams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete diagram: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrDiagramNotFound, id)
	}

	return tx.Commit()
}

// List returns summaries of all stored diagrams.
func (r *SQLiteDiagramRepository) List() ([]DiagramSummary, error) {
	rows, err := r.db.Query(`
		SELECT d.id, d.name, d.updated_at,
			(SELECT COUNT(*) FROM cells c WHERE c.diagram_id = d.id)
		FROM diagrams d
		ORDER BY d.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]DiagramSummary, 0)
	for rows.Next() {
		var s DiagramSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt, &s.Cells); err != nil {
			return nil, fmt.Errorf("failed to scan diagram summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diagrams: %w", err)
	}

	return summaries, nil
}

// normalizeNumbers turns integral float64 values produced by encoding/json
// back into ints so that attributes survive a save and load unchanged.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			val[k] = normalizeNumbers(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = normalizeNumbers(inner)
		}
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int(val)
		}
		return val
	default:
		return v
	}
}
