// Package service implements the identity business rules on top of the
// generic document repository.
//
// All operations assume their inputs already passed the field-level checks in
// pkg/validation; only rules that require store access live here. The service
// performs no logging and no retries: every failure is surfaced to the caller
// verbatim as a coded domain error.
package service

import (
	"context"
	"errors"

	"micronation/internal/platform/metrics"
	"micronation/internal/repository"
	"micronation/internal/user"
	dErrors "micronation/pkg/domain-errors"
	"micronation/pkg/platform/sentinel"
)

// Service orchestrates registration, login, and credential changes.
type Service struct {
	users   repository.Store[user.Document]
	hasher  user.PasswordHasher
	metrics *metrics.Metrics
}

// New creates the identity service. metrics may be nil.
func New(users repository.Store[user.Document], hasher user.PasswordHasher, m *metrics.Metrics) *Service {
	return &Service{users: users, hasher: hasher, metrics: m}
}

// Register creates a new user. Email uniqueness is checked before nickname
// uniqueness, so only the first applicable conflict is reported. The
// pre-checks give deterministic error ordering; the store's unique indexes
// are the true arbiter under concurrency, and an insert-time violation is
// remapped to the same conflict errors.
func (s *Service) Register(ctx context.Context, email, password, nickname string) (*user.User, error) {
	if err := s.ensureFree(ctx, "email", email, user.ErrEmailTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "nickname", nickname, user.ErrNicknameTaken); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	rec, err := s.users.CreateAndReturn(ctx, user.Document{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: hashed,
	})
	if err != nil {
		if conflictErr := s.mapConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	return toUser(rec), nil
}

// Login authenticates an email/password pair. It issues no session or token;
// the success marker is the authenticated identity itself.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	rec, err := s.users.FindOne(ctx, repository.Filter{"email": email})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countLogin("unknown_email")
			return nil, user.ErrEmailNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := s.hasher.Verify(password, rec.Data.PasswordHash); err != nil {
		s.countLogin("incorrect_password")
		return nil, user.ErrIncorrectPassword
	}

	s.countLogin("success")
	return toUser(rec), nil
}

// ChangePassword verifies the current password and overwrites the stored
// hash. The target user is an upstream-authenticated precondition.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	rec, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Verify(currentPassword, rec.Data.PasswordHash); err != nil {
		return user.ErrIncorrectPassword
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	filter := repository.Filter{repository.FieldID: rec.ID}
	if _, err := s.users.UpdateAndReturnOne(ctx, filter, repository.Patch{"password_hash": hashed}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	if s.metrics != nil {
		s.metrics.IncrementPasswordChanges()
	}
	return nil
}

// ChangeNickname verifies the password, checks that no other user holds the
// new nickname, and updates the record. Returns the new nickname.
func (s *Service) ChangeNickname(ctx context.Context, userID, password, newNickname string) (string, error) {
	rec, err := s.findByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.hasher.Verify(password, rec.Data.PasswordHash); err != nil {
		return "", user.ErrIncorrectPassword
	}

	// Keeping one's own nickname is not a conflict; only a different holder is.
	holder, err := s.users.FindOne(ctx, repository.Filter{"nickname": newNickname})
	switch {
	case err == nil && holder.ID != rec.ID:
		return "", user.ErrNicknameTaken
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up nickname")
	}

	filter := repository.Filter{repository.FieldID: rec.ID}
	updated, err := s.users.UpdateAndReturnOne(ctx, filter, repository.Patch{"nickname": newNickname})
	if err != nil {
		if conflictErr := s.mapConflict(err); conflictErr != nil {
			return "", conflictErr
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to update nickname")
	}

	if s.metrics != nil {
		s.metrics.IncrementNicknameChanges()
	}
	return updated.Data.Nickname, nil
}

func (s *Service) findByID(ctx context.Context, userID string) (repository.Record[user.Document], error) {
	rec, err := s.users.FindOne(ctx, repository.Filter{repository.FieldID: userID})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return rec, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return rec, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return rec, nil
}

func (s *Service) ensureFree(ctx context.Context, field, value string, taken *dErrors.Error) error {
	_, err := s.users.FindOne(ctx, repository.Filter{field: value})
	switch {
	case err == nil:
		return taken
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
}

// mapConflict translates a store constraint violation into the matching
// domain conflict. This closes the check-then-act race between concurrent
// writes on the same key.
func (s *Service) mapConflict(err error) error {
	var conflict *repository.ConflictError
	if !errors.As(err, &conflict) {
		return nil
	}
	switch conflict.Field {
	case "email":
		return user.ErrEmailTaken
	case "nickname":
		return user.ErrNicknameTaken
	default:
		return dErrors.Wrap(err, dErrors.CodeConflict, "constraint violated")
	}
}

func (s *Service) countLogin(status string) {
	if s.metrics != nil {
		s.metrics.IncrementLoginAttempts(status)
	}
}

func toUser(rec repository.Record[user.Document]) *user.User {
	return &user.User{
		ID:        rec.ID,
		Email:     rec.Data.Email,
		Nickname:  rec.Data.Nickname,
		CreatedAt: rec.CreatedAt,
	}
}
