package service

import (
	"context"
	"testing"

	"devconnect/internal/auth"
	"devconnect/internal/github"
	"devconnect/internal/repository"
	"devconnect/internal/testutil"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// mockTokenIssuer is a testify mock for TokenIssuer.
type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Issue(id auth.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

// repoListerStub is a stub for RepoLister.
type repoListerStub struct {
	listFn func(context.Context, string) ([]github.Repo, error)
}

func (s *repoListerStub) ListRepos(ctx context.Context, username string) ([]github.Repo, error) {
	return s.listFn(ctx, username)
}

type fixture struct {
	db       *gorm.DB
	tokens   *mockTokenIssuer
	users    *UserService
	profiles *ProfileService
	posts    *PostService
	github   *repoListerStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	userRepo := repository.NewUserRepository(db)
	tokens := &mockTokenIssuer{}
	gh := &repoListerStub{listFn: func(context.Context, string) ([]github.Repo, error) { return nil, nil }}

	users := NewUserService(userRepo, tokens)
	users.hashCost = bcrypt.MinCost

	return &fixture{
		db:       db,
		tokens:   tokens,
		users:    users,
		profiles: NewProfileService(repository.NewProfileRepository(db), gh),
		posts:    NewPostService(repository.NewPostRepository(db), userRepo),
		github:   gh,
	}
}

// register creates a user and returns its identity.
func (f *fixture) register(t *testing.T, name, email string) auth.Identity {
	t.Helper()
	f.tokens.On("Issue", mock.MatchedBy(func(id auth.Identity) bool { return id.Name == name })).
		Return("token-"+name, nil).Once()

	_, err := f.users.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	u, err := repository.NewUserRepository(f.db).GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup %s: %v", email, err)
	}
	return auth.Identity{ID: u.ID, Name: u.Name}
}
