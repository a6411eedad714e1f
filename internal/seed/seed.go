// Package seed creates demo data for development databases. Everything goes
// through the regular services so seeded rows obey the same rules as API writes.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

// Options controls how much data Run creates.
type Options struct {
	Users        int
	PostsPerUser int
	// Likes and comments per post are drawn from [0, MaxReactions].
	MaxReactions int
}

// Summary reports what Run created.
type Summary struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
}

// Seeder drives the services with generated content.
type Seeder struct {
	db       *gorm.DB
	tokens   *auth.TokenService
	users    *service.UserService
	profiles *service.ProfileService
	posts    *service.PostService
	faker    *gofakeit.Faker
}

// NewSeeder wires the services on db. The same seed produces the same content.
func NewSeeder(db *gorm.DB, tokens *auth.TokenService, seed int64) *Seeder {
	userRepo := repository.NewUserRepository(db)
	return &Seeder{
		db:     db,
		tokens: tokens,
		users:  service.NewUserService(userRepo, tokens),
		// repository listing is never called while seeding
		profiles: service.NewProfileService(repository.NewProfileRepository(db), nil),
		posts:    service.NewPostService(repository.NewPostRepository(db), userRepo),
		faker:    gofakeit.New(seed),
	}
}

// ClearAll removes every post, profile and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Post{}, &models.Profile{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clearing %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates users with profiles, their posts, and reactions from other users.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	identities := make([]auth.Identity, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		id, err := s.seedUser(ctx, i)
		if err != nil {
			return sum, err
		}
		identities = append(identities, id)
		sum.Users++
	}

	for _, author := range identities {
		for p := 0; p < opts.PostsPerUser; p++ {
			post, err := s.posts.Create(ctx, author, service.CreatePostInput{
				Text: s.faker.Paragraph(1, 3, 12, " "),
			})
			if err != nil {
				return sum, fmt.Errorf("creating post for user %d: %w", author.ID, err)
			}
			sum.Posts++

			likes, comments, err := s.react(ctx, post.ID, identities, opts.MaxReactions)
			sum.Likes += likes
			sum.Comments += comments
			if err != nil {
				return sum, err
			}
		}
	}

	return sum, nil
}

func (s *Seeder) seedUser(ctx context.Context, n int) (auth.Identity, error) {
	first, last := s.faker.FirstName(), s.faker.LastName()
	email := fmt.Sprintf("%s.%s.%d@example.com", slug(first), slug(last), n)

	token, err := s.users.Register(ctx, service.RegisterInput{
		Name:     first + " " + last,
		Email:    email,
		Password: DefaultPassword,
	})
	if err != nil {
		return auth.Identity{}, fmt.Errorf("registering %s: %w", email, err)
	}

	id, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("verifying seeded token: %w", err)
	}

	skills := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		skills = append(skills, s.faker.ProgrammingLanguage())
	}

	if _, err := s.profiles.Upsert(ctx, id, service.UpsertProfileInput{
		Company:        s.faker.Company(),
		Website:        s.faker.URL(),
		Location:       s.faker.City(),
		Bio:            s.faker.HackerPhrase(),
		Status:         s.faker.JobTitle(),
		GithubUsername: slug(first),
		Skills:         strings.Join(skills, ","),
		Twitter:        "https://twitter.com/" + slug(first),
	}); err != nil {
		return id, fmt.Errorf("creating profile for %s: %w", email, err)
	}

	from := s.faker.DateRange(time.Now().AddDate(-10, 0, 0), time.Now().AddDate(-1, 0, 0))
	if _, err := s.profiles.AddExperience(ctx, id, service.ExperienceInput{
		Title:       s.faker.JobTitle(),
		Company:     s.faker.Company(),
		Location:    s.faker.City(),
		From:        from.Format(time.DateOnly),
		Current:     true,
		Description: s.faker.Sentence(10),
	}); err != nil {
		return id, fmt.Errorf("adding experience for %s: %w", email, err)
	}

	start := from.AddDate(-4, 0, 0)
	if _, err := s.profiles.AddEducation(ctx, id, service.EducationInput{
		School:       s.faker.Company() + " University",
		Degree:       "BSc",
		FieldOfStudy: "Computer Science",
		From:         start.Format(time.DateOnly),
		To:           from.Format(time.DateOnly),
	}); err != nil {
		return id, fmt.Errorf("adding education for %s: %w", email, err)
	}

	return id, nil
}

// slug keeps the lowercase ASCII letters and digits of name.
func slug(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, name)
}

func (s *Seeder) react(ctx context.Context, postID uint, identities []auth.Identity, limit int) (likes, comments int, err error) {
	if limit <= 0 || len(identities) == 0 {
		return 0, 0, nil
	}

	for i := s.faker.Number(0, limit); i > 0; i-- {
		who := identities[s.faker.Number(0, len(identities)-1)]
		if _, err := s.posts.Like(ctx, who, postID); err != nil {
			if models.IsKind(err, models.KindConflict) {
				continue
			}
			return likes, comments, fmt.Errorf("liking post %d: %w", postID, err)
		}
		likes++
	}

	for i := s.faker.Number(0, limit); i > 0; i-- {
		who := identities[s.faker.Number(0, len(identities)-1)]
		if _, err := s.posts.AddComment(ctx, who, postID, service.CommentInput{
			Text: s.faker.Sentence(8),
		}); err != nil {
			return likes, comments, fmt.Errorf("commenting on post %d: %w", postID, err)
		}
		comments++
	}

	return likes, comments, nil
}
