// Package repository provides a generic document repository over a named
// collection of uniformly shaped records.
//
// The repository has no business-rule knowledge: uniqueness is enforced by
// the store's constraints declared per collection, while authentication and
// field validation live with the callers. It is a thin persistence primitive
// parameterized by record shape.
package repository

import (
	"context"
	"fmt"
	"time"

	"micronation/pkg/platform/sentinel"
)

// FieldID is the reserved filter key addressing the store-assigned record
// identifier. All other filter keys address fields of the document itself.
const FieldID = "id"

// Filter matches records whose fields equal every listed value. No ordering
// is guaranteed across multiple matches; callers that need uniqueness must
// rely on distinct keys, not repository ordering.
type Filter map[string]any

// Patch is a partial document merged over the matched record's fields.
type Patch map[string]any

// Record is the persisted envelope around a document: the store-assigned
// identifier, the creation stamp set exactly once, and the document itself.
type Record[T any] struct {
	ID        string
	CreatedAt time.Time
	Data      T
}

// Store is the persistence capability consumed by services.
//
// Implementations must return sentinel.ErrNotFound when a filter matches
// nothing, and a *ConflictError when a write violates one of the collection's
// unique constraints.
type Store[T any] interface {
	// CreateAndReturn stamps the creation time onto the document, persists
	// it, and returns the persisted form. The returned record is
	// authoritative; the caller's input is never mutated.
	CreateAndReturn(ctx context.Context, data T) (Record[T], error)

	// FindOne returns the first record matching the filter.
	FindOne(ctx context.Context, filter Filter) (Record[T], error)

	// UpdateAndReturnOne applies the patch to the first record matching the
	// filter and returns the record's state after the update.
	UpdateAndReturnOne(ctx context.Context, filter Filter, patch Patch) (Record[T], error)
}

// ConflictError reports which unique field a write collided on. It satisfies
// errors.Is(err, sentinel.ErrConflict).
type ConflictError struct {
	// Field is the document field whose unique constraint was violated.
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint on %q violated", e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == sentinel.ErrConflict }
