package repository

import (
	"context"
	"errors"

	"devconnect/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	// Upsert loads the user's profile, creating an empty one if none exists,
	// applies fn and saves the result.
	Upsert(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error)
	// Mutate applies fn to the user's existing profile under a row lock and
	// persists its experience and education lists.
	Mutate(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return r.load(r.db.WithContext(ctx), userID)
}

func (r *profileRepository) load(db *gorm.DB, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := db.Preload("User", ownerSummary).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, translate(err, models.NewProfileNotFoundError())
	}
	profile.Normalize()
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Preload("User", ownerSummary).
		Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range profiles {
		profiles[i].Normalize()
	}
	return profiles, nil
}

func (r *profileRepository) Upsert(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := forUpdate(tx).Where("user_id = ?", userID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = models.Profile{UserID: userID}
		case err != nil:
			return err
		}
		profile.Normalize()

		if err := fn(&profile); err != nil {
			return err
		}
		return tx.Omit("User").Save(&profile).Error
	})
	if err != nil {
		return nil, translate(err, models.NewProfileNotFoundError())
	}
	return r.GetByUserID(ctx, userID)
}

func (r *profileRepository) Mutate(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error) {
	var result *models.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := forUpdate(tx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return err
		}
		profile.Normalize()

		if err := fn(&profile); err != nil {
			return err
		}

		if err := tx.Model(&models.Profile{ID: profile.ID}).Updates(map[string]any{
			"experience": profile.Experience,
			"education":  profile.Education,
		}).Error; err != nil {
			return err
		}

		loaded, err := r.load(tx, userID)
		result = loaded
		return err
	})
	if err != nil {
		return nil, translate(err, models.NewProfileNotFoundError())
	}
	return result, nil
}
