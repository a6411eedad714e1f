package repository

import (
	"context"
	"testing"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "hash", Avatar: "//avatar/" + name}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "Ada", "ada@x.com")
	assert.NotZero(t, u.ID)

	got, err := repo.GetByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsKind(err, models.KindNotFound))

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	assert.True(t, models.IsKind(err, models.KindNotFound))

	err = repo.Create(ctx, &models.User{Name: "Dup", Email: "ada@x.com", Password: "hash"})
	assert.True(t, models.IsKind(err, models.KindConflict))
}

func TestUserRepository_DeleteCascade(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	profiles := NewProfileRepository(db)

	a := createUser(t, db, "A", "a@x.com")
	b := createUser(t, db, "B", "b@x.com")

	_, err := profiles.Upsert(ctx, a.ID, func(p *models.Profile) error {
		p.Status = "Dev"
		return nil
	})
	require.NoError(t, err)

	own := &models.Post{UserID: a.ID, Text: "mine"}
	require.NoError(t, posts.Create(ctx, own))

	other := &models.Post{UserID: b.ID, Text: "theirs"}
	require.NoError(t, posts.Create(ctx, other))
	_, err = posts.Mutate(ctx, other.ID, func(p *models.Post) error {
		p.Likes = datatypes.JSONSlice[models.Like]{{UserID: a.ID}, {UserID: b.ID}}
		p.Comments = datatypes.JSONSlice[models.Comment]{
			{ID: "c1", UserID: a.ID, Text: "from a"},
			{ID: "c2", UserID: b.ID, Text: "from b"},
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, users.DeleteCascade(ctx, a.ID))

	_, err = users.GetByID(ctx, a.ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))

	_, err = profiles.GetByUserID(ctx, a.ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))

	_, err = posts.GetByID(ctx, own.ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))

	remaining, err := posts.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Like{{UserID: b.ID}}, []models.Like(remaining.Likes))
	require.Len(t, remaining.Comments, 1)
	assert.Equal(t, "c2", remaining.Comments[0].ID)

	assert.True(t, models.IsKind(users.DeleteCascade(ctx, a.ID), models.KindNotFound))

	// the email is free again
	createUser(t, db, "A2", "a@x.com")
}

func TestProfileRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "Ada", "ada@x.com")

	_, err := repo.GetByUserID(ctx, u.ID)
	require.Error(t, err)
	assert.Equal(t, 400, models.StatusFor(err))
	assert.Equal(t, "Profile Not Found", models.AsAppError(err).Message)

	created, err := repo.Upsert(ctx, u.ID, func(p *models.Profile) error {
		p.Status = "Dev"
		p.Skills = datatypes.JSONSlice[string]{"js", "go"}
		p.Social = datatypes.NewJSONType(models.SocialLinks{Twitter: "https://twitter.com/ada"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Dev", created.Status)
	assert.Equal(t, []string{"js", "go"}, []string(created.Skills))
	assert.Equal(t, "https://twitter.com/ada", created.Social.Data().Twitter)
	assert.Equal(t, "Ada", created.User.Name)
	assert.Empty(t, created.User.Email, "owner summary must not expose email")
	assert.NotNil(t, created.Experience)

	updated, err := repo.Upsert(ctx, u.ID, func(p *models.Profile) error {
		p.Company = "Acme"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, "Dev", updated.Status)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProfileRepository_Mutate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "Ada", "ada@x.com")

	_, err := repo.Mutate(ctx, u.ID, func(*models.Profile) error { return nil })
	assert.Equal(t, 400, models.StatusFor(err))

	_, err = repo.Upsert(ctx, u.ID, func(p *models.Profile) error {
		p.Status = "Dev"
		return nil
	})
	require.NoError(t, err)

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := repo.Mutate(ctx, u.ID, func(p *models.Profile) error {
		p.Experience = append(p.Experience, models.Experience{ID: "e1", Title: "Dev", Company: "Acme", From: from})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, p.Experience, 1)
	assert.True(t, from.Equal(p.Experience[0].From))

	// a failing callback leaves the row untouched
	_, err = repo.Mutate(ctx, u.ID, func(p *models.Profile) error {
		p.Experience = nil
		return models.NewNotFoundError("Experience not found")
	})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	p, err = repo.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, p.Experience, 1)
}

func TestPostRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "Ada", "ada@x.com")

	first := &models.Post{UserID: u.ID, Text: "first", CreatedAt: time.Now().Add(-time.Minute)}
	second := &models.Post{UserID: u.ID, Text: "second"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)
	assert.NotNil(t, list[0].Likes)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)

	updated, err := repo.Mutate(ctx, first.ID, func(p *models.Post) error {
		p.Likes = append(datatypes.JSONSlice[models.Like]{{UserID: u.ID}}, p.Likes...)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, updated.Likes, 1)

	_, err = repo.Mutate(ctx, 999, func(*models.Post) error { return nil })
	assert.True(t, models.IsKind(err, models.KindNotFound))

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.True(t, models.IsKind(repo.Delete(ctx, first.ID), models.KindNotFound))
}
