package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"micronation/internal/repository"
	"micronation/internal/user"
	dErrors "micronation/pkg/domain-errors"
)

// fakeHasher produces deterministic digests so tests can assert on stored
// values without touching bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (fakeHasher) Verify(plain, digest string) error {
	if "hashed:"+plain != digest {
		return errors.New("digest mismatch")
	}
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.Memory[user.Document]
	svc   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemory[user.Document]("email", "nickname")
	s.svc = New(s.store, fakeHasher{}, nil)
}

func (s *ServiceSuite) register(email, password, nickname string) *user.User {
	u, err := s.svc.Register(s.ctx, email, password, nickname)
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) TestRegister() {
	u := s.register("kim@example.com", "secret1", "kim")

	s.NotEmpty(u.ID)
	s.Equal("kim@example.com", u.Email)
	s.Equal("kim", u.Nickname)
	s.False(u.CreatedAt.IsZero())

	rec, err := s.store.FindOne(s.ctx, repository.Filter{"email": "kim@example.com"})
	s.Require().NoError(err)
	s.Equal("hashed:secret1", rec.Data.PasswordHash)
}

func (s *ServiceSuite) TestRegisterEmailTaken() {
	s.register("kim@example.com", "secret1", "kim")

	_, err := s.svc.Register(s.ctx, "kim@example.com", "secret2", "lee")
	s.ErrorIs(err, user.ErrEmailTaken)
}

func (s *ServiceSuite) TestRegisterNicknameTaken() {
	s.register("kim@example.com", "secret1", "kim")

	_, err := s.svc.Register(s.ctx, "lee@example.com", "secret2", "kim")
	s.ErrorIs(err, user.ErrNicknameTaken)
}

func (s *ServiceSuite) TestRegisterEmailConflictWinsOverNickname() {
	s.register("kim@example.com", "secret1", "kim")

	// Both fields collide; the email conflict is reported.
	_, err := s.svc.Register(s.ctx, "kim@example.com", "secret2", "kim")
	s.ErrorIs(err, user.ErrEmailTaken)
}

func (s *ServiceSuite) TestRegisterInsertRaceRemapped() {
	store := &conflictingStore{field: "nickname"}
	svc := New(store, fakeHasher{}, nil)

	_, err := svc.Register(s.ctx, "kim@example.com", "secret1", "kim")
	s.ErrorIs(err, user.ErrNicknameTaken)
}

func (s *ServiceSuite) TestLogin() {
	registered := s.register("kim@example.com", "secret1", "kim")

	u, err := s.svc.Login(s.ctx, "kim@example.com", "secret1")
	s.Require().NoError(err)
	s.Equal(registered.ID, u.ID)
	s.Equal("kim", u.Nickname)
}

func (s *ServiceSuite) TestLoginUnknownEmail() {
	_, err := s.svc.Login(s.ctx, "nobody@example.com", "secret1")
	s.ErrorIs(err, user.ErrEmailNotFound)
}

func (s *ServiceSuite) TestLoginIncorrectPassword() {
	s.register("kim@example.com", "secret1", "kim")

	_, err := s.svc.Login(s.ctx, "kim@example.com", "wrong")
	s.ErrorIs(err, user.ErrIncorrectPassword)
}

func (s *ServiceSuite) TestChangePassword() {
	u := s.register("kim@example.com", "secret1", "kim")

	err := s.svc.ChangePassword(s.ctx, u.ID, "secret1", "secret2")
	s.Require().NoError(err)

	_, err = s.svc.Login(s.ctx, "kim@example.com", "secret1")
	s.ErrorIs(err, user.ErrIncorrectPassword)

	_, err = s.svc.Login(s.ctx, "kim@example.com", "secret2")
	s.NoError(err)
}

func (s *ServiceSuite) TestChangePasswordIncorrectCurrent() {
	u := s.register("kim@example.com", "secret1", "kim")

	err := s.svc.ChangePassword(s.ctx, u.ID, "wrong", "secret2")
	s.ErrorIs(err, user.ErrIncorrectPassword)

	// The stored hash is untouched.
	_, err = s.svc.Login(s.ctx, "kim@example.com", "secret1")
	s.NoError(err)
}

func (s *ServiceSuite) TestChangePasswordUnknownUser() {
	err := s.svc.ChangePassword(s.ctx, "b4a9b0ce-0000-4000-8000-000000000000", "secret1", "secret2")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestChangeNickname() {
	u := s.register("kim@example.com", "secret1", "kim")

	nickname, err := s.svc.ChangeNickname(s.ctx, u.ID, "secret1", "kim2")
	s.Require().NoError(err)
	s.Equal("kim2", nickname)

	rec, err := s.store.FindOne(s.ctx, repository.Filter{"email": "kim@example.com"})
	s.Require().NoError(err)
	s.Equal("kim2", rec.Data.Nickname)
}

func (s *ServiceSuite) TestChangeNicknameIncorrectPassword() {
	u := s.register("kim@example.com", "secret1", "kim")

	_, err := s.svc.ChangeNickname(s.ctx, u.ID, "wrong", "kim2")
	s.ErrorIs(err, user.ErrIncorrectPassword)

	rec, findErr := s.store.FindOne(s.ctx, repository.Filter{"email": "kim@example.com"})
	s.Require().NoError(findErr)
	s.Equal("kim", rec.Data.Nickname)
}

func (s *ServiceSuite) TestChangeNicknameTakenByOther() {
	s.register("lee@example.com", "secret1", "lee")
	u := s.register("kim@example.com", "secret1", "kim")

	_, err := s.svc.ChangeNickname(s.ctx, u.ID, "secret1", "lee")
	s.ErrorIs(err, user.ErrNicknameTaken)
}

func (s *ServiceSuite) TestChangeNicknameKeepOwn() {
	u := s.register("kim@example.com", "secret1", "kim")

	nickname, err := s.svc.ChangeNickname(s.ctx, u.ID, "secret1", "kim")
	s.Require().NoError(err)
	s.Equal("kim", nickname)
}

func (s *ServiceSuite) TestChangeNicknameUnknownUser() {
	_, err := s.svc.ChangeNickname(s.ctx, "b4a9b0ce-0000-4000-8000-000000000000", "secret1", "kim2")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// conflictingStore simulates a concurrent writer landing first: lookups see
// nothing, but the insert hits a unique index.
type conflictingStore struct {
	repository.Memory[user.Document]
	field string
}

func (c *conflictingStore) CreateAndReturn(ctx context.Context, doc user.Document) (repository.Record[user.Document], error) {
	return repository.Record[user.Document]{}, &repository.ConflictError{Field: c.field}
}
