// Package personstore loads a person's attribute rows from Postgres and
// adapts them into the person.View the Eligibility Calculator consumes.
package personstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
)

// Store loads person rows from a `person_attributes` table keyed by NHS
// number, row type and (for TARGET rows) target name. Columns beyond the
// key are a JSONB `attributes` bag, matching the flexible attribute-bag
// shape of the person rows interface.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects a pgxpool.Pool against dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Load fetches every attribute row recorded for nhsNumber and builds a
// person.View. A person with no rows at all produces an empty (but
// non-nil) View rather than an error — the calculator treats missing
// attributes as absent, not as a request failure.
func (s *Store) Load(ctx context.Context, nhsNumber string) (*person.View, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT row_type, target_name, attributes
		FROM person_attributes
		WHERE nhs_number = $1
	`, nhsNumber)
	if err != nil {
		return nil, fmt.Errorf("query person_attributes for %s: %w", nhsNumber, err)
	}
	defer rows.Close()

	var records []person.Record
	for rows.Next() {
		var rowType, targetName string
		var attrs map[string]string
		if err := rows.Scan(&rowType, &targetName, &attrs); err != nil {
			return nil, fmt.Errorf("scan person_attributes row for %s: %w", nhsNumber, err)
		}
		records = append(records, person.Record{
			Type:       person.RowType(rowType),
			TargetName: targetName,
			Attributes: attrs,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person_attributes for %s: %w", nhsNumber, err)
	}

	return person.New(records), nil
}

// LoadRow fetches a single row directly, without loading a person's full
// attribute set. Returns pgx.ErrNoRows when absent.
func (s *Store) LoadRow(ctx context.Context, nhsNumber string, rowType person.RowType, targetName string) (person.Record, error) {
	var attrs map[string]string
	err := s.pool.QueryRow(ctx, `
		SELECT attributes FROM person_attributes
		WHERE nhs_number = $1 AND row_type = $2 AND target_name = $3
	`, nhsNumber, string(rowType), targetName).Scan(&attrs)
	if err != nil {
		if err == pgx.ErrNoRows {
			return person.Record{}, err
		}
		return person.Record{}, fmt.Errorf("load person_attributes row for %s: %w", nhsNumber, err)
	}
	return person.Record{Type: rowType, TargetName: targetName, Attributes: attrs}, nil
}
