package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tOgg1/weaver/internal/models"
)

// Pattern repository errors.
var (
	ErrPatternNotFound      = errors.New("pattern not found")
	ErrPatternAlreadyExists = errors.New("pattern with this name already exists")
)

// PatternRepository handles library pattern persistence.
type PatternRepository struct {
	db *DB
}

// NewPatternRepository creates a new PatternRepository.
func NewPatternRepository(db *DB) *PatternRepository {
	return &PatternRepository{db: db}
}

const patternColumns = `id, name, width, height, cells_json, favorite, created_at, updated_at`

// Create saves a new pattern.
func (r *PatternRepository) Create(ctx context.Context, p *models.LibraryPattern) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	cells, err := json.Marshal(p.Pattern.Cells)
	if err != nil {
		return fmt.Errorf("failed to marshal cells: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO patterns (`+patternColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Pattern.Name,
		p.Pattern.Width,
		p.Pattern.Height,
		string(cells),
		boolToInt(p.Pattern.Favorite),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrPatternAlreadyExists
		}
		return fmt.Errorf("failed to insert pattern: %w", err)
	}

	return nil
}

// Get retrieves a pattern by ID.
func (r *PatternRepository) Get(ctx context.Context, id string) (*models.LibraryPattern, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patternColumns+` FROM patterns WHERE id = ?`, id)
	return r.scanPattern(row)
}

// GetByName retrieves a pattern by its unique name.
func (r *PatternRepository) GetByName(ctx context.Context, name string) (*models.LibraryPattern, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patternColumns+` FROM patterns WHERE name = ?`, name)
	return r.scanPattern(row)
}

// List retrieves all patterns, favorites first, then by name.
func (r *PatternRepository) List(ctx context.Context) ([]*models.LibraryPattern, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+patternColumns+`
		FROM patterns
		ORDER BY favorite DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.LibraryPattern
	for rows.Next() {
		p, err := r.scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns: %w", err)
	}

	return patterns, nil
}

// SetFavorite pins or unpins a pattern.
func (r *PatternRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patterns SET favorite = ?, updated_at = ? WHERE id = ?
	`, boolToInt(favorite), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update pattern: %w", err)
	}
	return requireAffected(result, ErrPatternNotFound)
}

// Delete removes a pattern by ID.
func (r *PatternRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	return requireAffected(result, ErrPatternNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PatternRepository) scanPattern(row rowScanner) (*models.LibraryPattern, error) {
	var (
		p                    models.LibraryPattern
		pattern              models.Pattern
		cellsJSON            string
		favorite             int
		createdAt, updatedAt string
	)

	err := row.Scan(
		&p.ID,
		&pattern.Name,
		&pattern.Width,
		&pattern.Height,
		&cellsJSON,
		&favorite,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("failed to scan pattern: %w", err)
	}

	if err := json.Unmarshal([]byte(cellsJSON), &pattern.Cells); err != nil {
		r.db.logger.Warn().Err(err).Str("pattern_id", p.ID).Msg("failed to parse pattern cells")
		pattern.Cells = models.Grid(pattern.Height, pattern.Width, models.Unset)
	}
	pattern.Favorite = favorite != 0
	p.Pattern = &pattern

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}

	return &p, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
