//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"micronation/internal/repository"
	"micronation/internal/user"
	"micronation/pkg/platform/sentinel"
	"micronation/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *repository.Postgres[user.Document]
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	store, err := repository.NewPostgres[user.Document](s.postgres.DB, "users")
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func newTestDocument(tag string) user.Document {
	return user.Document{
		Email:        tag + "@example.com",
		Nickname:     tag,
		PasswordHash: "digest-" + tag,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()

	created, err := s.store.CreateAndReturn(ctx, newTestDocument("jane"))
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.False(created.CreatedAt.IsZero())

	found, err := s.store.FindOne(ctx, repository.Filter{"email": "jane@example.com"})
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(created.Data, found.Data)
	s.WithinDuration(created.CreatedAt, found.CreatedAt, 0)

	byID, err := s.store.FindOne(ctx, repository.Filter{repository.FieldID: created.ID})
	s.Require().NoError(err)
	s.Equal(created.Data, byID.Data)
}

func (s *PostgresStoreSuite) TestFindOneNotFound() {
	_, err := s.store.FindOne(context.Background(), repository.Filter{"email": "missing@example.com"})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePreservesUnpatchedFields() {
	ctx := context.Background()

	created, err := s.store.CreateAndReturn(ctx, newTestDocument("jane"))
	s.Require().NoError(err)

	updated, err := s.store.UpdateAndReturnOne(ctx,
		repository.Filter{repository.FieldID: created.ID},
		repository.Patch{"nickname": "jane2"},
	)
	s.Require().NoError(err)
	s.Equal("jane2", updated.Data.Nickname)
	s.Equal(created.Data.Email, updated.Data.Email)
	s.Equal(created.Data.PasswordHash, updated.Data.PasswordHash)
	s.WithinDuration(created.CreatedAt, updated.CreatedAt, 0)
}

func (s *PostgresStoreSuite) TestUpdateNotFound() {
	_, err := s.store.UpdateAndReturnOne(context.Background(),
		repository.Filter{"email": "missing@example.com"},
		repository.Patch{"nickname": "ghost"},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateEmailViolation() {
	ctx := context.Background()

	_, err := s.store.CreateAndReturn(ctx, newTestDocument("jane"))
	s.Require().NoError(err)

	doc := newTestDocument("jane")
	doc.Nickname = "other"
	_, err = s.store.CreateAndReturn(ctx, doc)

	var conflict *repository.ConflictError
	s.Require().ErrorAs(err, &conflict)
	s.Equal("email", conflict.Field)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestNicknameViolationOnUpdate() {
	ctx := context.Background()

	_, err := s.store.CreateAndReturn(ctx, newTestDocument("jane"))
	s.Require().NoError(err)
	second, err := s.store.CreateAndReturn(ctx, newTestDocument("john"))
	s.Require().NoError(err)

	_, err = s.store.UpdateAndReturnOne(ctx,
		repository.Filter{repository.FieldID: second.ID},
		repository.Patch{"nickname": "jane"},
	)

	var conflict *repository.ConflictError
	s.Require().ErrorAs(err, &conflict)
	s.Equal("nickname", conflict.Field)
}

// TestConcurrentDuplicateInsert verifies the unique index is the arbiter
// under concurrency: exactly one insert wins, the rest conflict.
func (s *PostgresStoreSuite) TestConcurrentDuplicateInsert() {
	ctx := context.Background()
	email := "race-" + uuid.NewString() + "@example.com"
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			doc := user.Document{
				Email:        email,
				Nickname:     "racer" + uuid.NewString(),
				PasswordHash: "digest",
			}
			_, err := s.store.CreateAndReturn(ctx, doc)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")
}
