package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uchejames/vibeshop/internal/domain"
)

// DefaultListLimit and MaxListLimit bound ListRecent
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Column widths of generation_logs
const (
	MaxRequestedCategoryLength = 255
	maxModelLength             = 128
	maxRendererLength          = 32
)

var ErrInvalidRecord = errors.New("invalid generation record")

// GenerationRepository defines the interface for the generation audit log
type GenerationRepository interface {
	Create(ctx context.Context, record *domain.GenerationRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.GenerationRecord, error)
	CountBySource(ctx context.Context) (map[domain.ListingSource]int64, error)
}

type generationRepository struct {
	db *sql.DB
}

// NewGenerationRepository creates a new instance of GenerationRepository
func NewGenerationRepository(db *sql.DB) GenerationRepository {
	return &generationRepository{db: db}
}

// Create inserts a generation record using parameterized queries
func (r *generationRepository) Create(ctx context.Context, record *domain.GenerationRecord) error {
	if record == nil || record.ResolvedCategory == "" || record.Source == "" {
		return ErrInvalidRecord
	}

	query := `
		INSERT INTO generation_logs (
			id, requested_category, resolved_category, source, model,
			renderer, duration_ms, error_message, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		columnText(record.RequestedCategory, MaxRequestedCategoryLength),
		string(record.ResolvedCategory),
		string(record.Source),
		columnText(record.Model, maxModelLength),
		columnText(record.Renderer, maxRendererLength),
		record.DurationMs,
		columnText(record.ErrorMessage, 0),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create generation record: %w", err)
	}

	return nil
}

// ListRecent returns the newest records first. Limits outside (0, MaxListLimit] are clamped.
func (r *generationRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT id, requested_category, resolved_category, source, model,
			renderer, duration_ms, error_message, created_at
		FROM generation_logs
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation records: %w", err)
	}
	defer rows.Close()

	records := []*domain.GenerationRecord{}
	for rows.Next() {
		record := &domain.GenerationRecord{}
		var resolved, source string
		err := rows.Scan(
			&record.ID,
			&record.RequestedCategory,
			&resolved,
			&source,
			&record.Model,
			&record.Renderer,
			&record.DurationMs,
			&record.ErrorMessage,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		record.ResolvedCategory = domain.Category(resolved)
		record.Source = domain.ListingSource(source)
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation records: %w", err)
	}

	return records, nil
}

// CountBySource returns the number of records per listing source.
// Every source is present in the result, zero when no record has it.
func (r *generationRepository) CountBySource(ctx context.Context) (map[domain.ListingSource]int64, error) {
	query := `
		SELECT source, COUNT(*)
		FROM generation_logs
		GROUP BY source
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count generation records: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ListingSource]int64{
		domain.SourceAI:       0,
		domain.SourcePartial:  0,
		domain.SourceFallback: 0,
	}
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan generation count: %w", err)
		}
		counts[domain.ListingSource(source)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation counts: %w", err)
	}

	return counts, nil
}

// columnText makes client-supplied text storable: NUL bytes and invalid UTF-8
// are rejected by postgres, and values are cut to maxRunes when it is positive.
func columnText(s string, maxRunes int) string {
	s = strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "\uFFFD")
	if maxRunes <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return s
}
