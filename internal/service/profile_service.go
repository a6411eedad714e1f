package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/github"
	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/policy"
	"devconnect/internal/repository"
	"devconnect/internal/sublist"
	"devconnect/internal/validation"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// RepoLister lists a GitHub user's repositories.
type RepoLister interface {
	ListRepos(ctx context.Context, username string) ([]github.Repo, error)
}

type ProfileService struct {
	profileRepo repository.ProfileRepository
	repos       RepoLister
	newID       func() string
}

type UpsertProfileInput struct {
	Company        string `json:"company" validate:"max=200"`
	Website        string `json:"website" validate:"max=300"`
	Location       string `json:"location" validate:"max=200"`
	Bio            string `json:"bio"`
	Status         string `json:"status" validate:"required"`
	GithubUsername string `json:"github_username" validate:"max=39"`
	Skills         string `json:"skills" validate:"required"`
	YouTube        string `json:"youtube" validate:"max=300"`
	Twitter        string `json:"twitter" validate:"max=300"`
	Facebook       string `json:"facebook" validate:"max=300"`
	LinkedIn       string `json:"linkedin" validate:"max=300"`
	Instagram      string `json:"instagram" validate:"max=300"`
}

type ExperienceInput struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationInput struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"field_of_study" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func NewProfileService(profileRepo repository.ProfileRepository, repos RepoLister) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		repos:       repos,
		newID:       uuid.NewString,
	}
}

// ParseSkills splits a comma separated skill list, trimming entries and dropping empties.
func ParseSkills(raw string) []string {
	parts := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}

// Me returns the requester's profile.
func (s *ProfileService) Me(ctx context.Context, requester auth.Identity) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, requester.ID)
}

// ByUserID returns the profile owned by userID.
func (s *ProfileService) ByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// List returns every profile with its owner's name and avatar.
func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	return s.profileRepo.List(ctx)
}

// Upsert creates or updates the requester's profile. Social links are replaced wholesale.
func (s *ProfileService) Upsert(ctx context.Context, requester auth.Identity, in UpsertProfileInput) (*models.Profile, error) {
	in.Status = strings.TrimSpace(in.Status)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	skills := ParseSkills(in.Skills)
	if len(skills) == 0 {
		return nil, models.NewValidationError("Skills is required",
			models.FieldError{Field: "skills", Message: "Skills is required"})
	}

	profile, err := s.profileRepo.Upsert(ctx, requester.ID, func(p *models.Profile) error {
		if err := policy.Authorize(p.UserID, requester, "update this profile"); err != nil {
			return err
		}

		p.Status = in.Status
		p.Skills = datatypes.JSONSlice[string](skills)
		setIfPresent(&p.Company, in.Company)
		setIfPresent(&p.Website, in.Website)
		setIfPresent(&p.Location, in.Location)
		setIfPresent(&p.Bio, in.Bio)
		setIfPresent(&p.GithubUsername, in.GithubUsername)

		p.Social = datatypes.NewJSONType(models.SocialLinks{
			YouTube:   in.YouTube,
			Twitter:   in.Twitter,
			Facebook:  in.Facebook,
			LinkedIn:  in.LinkedIn,
			Instagram: in.Instagram,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordEvent("profile_saved")
	return profile, nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// AddExperience prepends an experience entry to the requester's profile.
func (s *ProfileService) AddExperience(ctx context.Context, requester auth.Identity, in ExperienceInput) (*models.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parsePeriod(in.From, in.To, in.Current)
	if err != nil {
		return nil, err
	}

	entry := models.Experience{
		ID:          s.newID(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}

	return s.profileRepo.Mutate(ctx, requester.ID, func(p *models.Profile) error {
		if err := policy.Authorize(p.UserID, requester, "update this profile"); err != nil {
			return err
		}
		p.Experience = sublist.Prepend(p.Experience, entry)
		return nil
	})
}

// RemoveExperience deletes the experience entry with entryID.
func (s *ProfileService) RemoveExperience(ctx context.Context, requester auth.Identity, entryID string) (*models.Profile, error) {
	return s.profileRepo.Mutate(ctx, requester.ID, func(p *models.Profile) error {
		if err := policy.Authorize(p.UserID, requester, "update this profile"); err != nil {
			return err
		}
		list, _, err := sublist.RemoveByID(p.Experience, entryID)
		if errors.Is(err, sublist.ErrNotFound) {
			return models.NewNotFoundError("Experience not found")
		}
		p.Experience = list
		return nil
	})
}

// AddEducation prepends an education entry to the requester's profile.
func (s *ProfileService) AddEducation(ctx context.Context, requester auth.Identity, in EducationInput) (*models.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parsePeriod(in.From, in.To, in.Current)
	if err != nil {
		return nil, err
	}

	entry := models.Education{
		ID:           s.newID(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}

	return s.profileRepo.Mutate(ctx, requester.ID, func(p *models.Profile) error {
		if err := policy.Authorize(p.UserID, requester, "update this profile"); err != nil {
			return err
		}
		p.Education = sublist.Prepend(p.Education, entry)
		return nil
	})
}

// RemoveEducation deletes the education entry with entryID.
func (s *ProfileService) RemoveEducation(ctx context.Context, requester auth.Identity, entryID string) (*models.Profile, error) {
	return s.profileRepo.Mutate(ctx, requester.ID, func(p *models.Profile) error {
		if err := policy.Authorize(p.UserID, requester, "update this profile"); err != nil {
			return err
		}
		list, _, err := sublist.RemoveByID(p.Education, entryID)
		if errors.Is(err, sublist.ErrNotFound) {
			return models.NewNotFoundError("Education not found")
		}
		p.Education = list
		return nil
	})
}

// GithubRepos proxies the repository listing for username.
func (s *ProfileService) GithubRepos(ctx context.Context, username string) ([]github.Repo, error) {
	return s.repos.ListRepos(ctx, strings.TrimSpace(username))
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(field, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}
	msg := strings.ToUpper(field[:1]) + field[1:] + " date is invalid"
	return time.Time{}, models.NewValidationError(msg, models.FieldError{Field: field, Message: msg})
}

// parsePeriod parses an entry's date range. Current entries have no end date.
func parsePeriod(fromRaw, toRaw string, current bool) (time.Time, *time.Time, error) {
	from, err := parseDate("from", fromRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	if current || strings.TrimSpace(toRaw) == "" {
		return from, nil, nil
	}

	to, err := parseDate("to", toRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	if to.Before(from) {
		msg := "To date must be after from date"
		return time.Time{}, nil, models.NewValidationError(msg, models.FieldError{Field: "to", Message: msg})
	}
	return from, &to, nil
}
