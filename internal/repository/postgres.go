package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"micronation/pkg/platform/sentinel"
	"micronation/pkg/requestcontext"
)

// pgUniqueViolation is the SQLSTATE Postgres reports when a unique index is
// violated.
const pgUniqueViolation = "23505"

var collectionName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Postgres is the Store implementation backed by a Postgres table of the
// shape (id uuid, created_at timestamptz, data jsonb). One table per
// collection; unique constraints are expression indexes on document fields,
// named <collection>_<field>_key so conflicts can be mapped back to the field.
type Postgres[T any] struct {
	db     *sql.DB
	table  string
	tracer trace.Tracer
}

// NewPostgres binds a repository to a collection table. The collection name
// is interpolated into SQL, so it is restricted to a safe identifier and
// never taken from request input.
func NewPostgres[T any](db *sql.DB, collection string) (*Postgres[T], error) {
	if !collectionName.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	return &Postgres[T]{
		db:     db,
		table:  collection,
		tracer: otel.Tracer("micronation/internal/repository"),
	}, nil
}

func (p *Postgres[T]) CreateAndReturn(ctx context.Context, data T) (Record[T], error) {
	ctx, span := p.startSpan(ctx, "repository.CreateAndReturn")
	defer span.End()

	doc, err := json.Marshal(data)
	if err != nil {
		return Record[T]{}, fmt.Errorf("encode document: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %q (created_at, data) VALUES ($1, $2::jsonb) RETURNING id::text, created_at, data`,
		p.table,
	)
	row := p.db.QueryRowContext(ctx, query, requestcontext.Now(ctx), string(doc))
	return p.scanRecord(row)
}

func (p *Postgres[T]) FindOne(ctx context.Context, filter Filter) (Record[T], error) {
	ctx, span := p.startSpan(ctx, "repository.FindOne")
	defer span.End()

	cond, args, err := buildFilter(filter, 1)
	if err != nil {
		return Record[T]{}, err
	}

	query := fmt.Sprintf(
		`SELECT id::text, created_at, data FROM %q WHERE %s LIMIT 1`,
		p.table, cond,
	)
	row := p.db.QueryRowContext(ctx, query, args...)
	return p.scanRecord(row)
}

func (p *Postgres[T]) UpdateAndReturnOne(ctx context.Context, filter Filter, patch Patch) (Record[T], error) {
	ctx, span := p.startSpan(ctx, "repository.UpdateAndReturnOne")
	defer span.End()

	patchDoc, err := json.Marshal(patch)
	if err != nil {
		return Record[T]{}, fmt.Errorf("encode patch: %w", err)
	}
	cond, args, err := buildFilter(filter, 2)
	if err != nil {
		return Record[T]{}, err
	}

	// The inner select picks the first match so the update touches at most
	// one record, mirroring the single-document update contract.
	query := fmt.Sprintf(
		`UPDATE %q SET data = data || $1::jsonb
		 WHERE id = (SELECT id FROM %q WHERE %s LIMIT 1)
		 RETURNING id::text, created_at, data`,
		p.table, p.table, cond,
	)
	row := p.db.QueryRowContext(ctx, query, append([]any{string(patchDoc)}, args...)...)
	return p.scanRecord(row)
}

func (p *Postgres[T]) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.collection", p.table),
	))
}

func (p *Postgres[T]) scanRecord(row *sql.Row) (Record[T], error) {
	var (
		id        string
		createdAt time.Time
		doc       []byte
	)
	if err := row.Scan(&id, &createdAt, &doc); err != nil {
		return Record[T]{}, p.mapError(err)
	}
	var data T
	if err := json.Unmarshal(doc, &data); err != nil {
		return Record[T]{}, fmt.Errorf("decode record: %w", err)
	}
	return Record[T]{ID: id, CreatedAt: createdAt, Data: data}, nil
}

// mapError translates driver errors into the repository's error contract:
// sql.ErrNoRows becomes the not-found sentinel and unique violations become
// ConflictError naming the document field, derived from the index name.
func (p *Postgres[T]) mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &ConflictError{Field: p.fieldFromConstraint(pgErr.ConstraintName)}
	}
	return fmt.Errorf("%s: %w", p.table, err)
}

func (p *Postgres[T]) fieldFromConstraint(constraint string) string {
	field := strings.TrimPrefix(constraint, p.table+"_")
	return strings.TrimSuffix(field, "_key")
}

// buildFilter renders a Filter as a WHERE condition. The reserved id key
// compares against the id column; all remaining keys are folded into a single
// JSONB containment check so equality semantics match the document encoding.
func buildFilter(filter Filter, firstArg int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, fmt.Errorf("filter must not be empty")
	}

	var (
		conds []string
		args  []any
		doc   = map[string]any{}
	)
	next := firstArg
	for key, value := range filter {
		if key == FieldID {
			conds = append(conds, fmt.Sprintf("id = $%d::uuid", next))
			args = append(args, fmt.Sprint(value))
			next++
			continue
		}
		doc[key] = value
	}
	if len(doc) > 0 {
		raw, err := json.Marshal(doc)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter: %w", err)
		}
		conds = append(conds, fmt.Sprintf("data @> $%d::jsonb", next))
		args = append(args, string(raw))
	}
	return strings.Join(conds, " AND "), args, nil
}
