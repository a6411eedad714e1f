package repository

import (
	"context"
	"errors"
	"fmt"

	"devconnect/internal/models"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// DeleteCascade removes the user with their profile and posts, and strips
	// their likes and comments from every other post, in one transaction.
	DeleteCascade(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func userNotFound() *models.AppError {
	return models.NewNotFoundError("User not found")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, userNotFound())
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, userNotFound())
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("User already exists")
	}
	return translate(err, userNotFound())
}

func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).First(&user, id).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := stripUserActivity(tx, id); err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
	return translate(err, userNotFound())
}

// postsTouchedBy narrows a post query to rows holding a like or comment by
// userID. Postgres answers this from the jsonb columns; other dialects scan
// every row and rely on the in-memory filter below.
func postsTouchedBy(tx *gorm.DB, userID uint) *gorm.DB {
	q := tx.Model(&models.Post{})
	if tx.Dialector.Name() != "postgres" {
		return q
	}
	needle := fmt.Sprintf(`[{"user_id":%d}]`, userID)
	return q.Where("likes @> ?::jsonb OR comments @> ?::jsonb", needle, needle)
}

// stripUserActivity removes the user's likes and comments from all remaining posts.
func stripUserActivity(tx *gorm.DB, userID uint) error {
	var batch []models.Post
	res := forUpdate(postsTouchedBy(tx, userID)).FindInBatches(&batch, 100, func(btx *gorm.DB, _ int) error {
		for i := range batch {
			p := &batch[i]
			likes := datatypes.JSONSlice[models.Like](
				lo.Reject(p.Likes, func(l models.Like, _ int) bool { return l.UserID == userID }))
			comments := datatypes.JSONSlice[models.Comment](
				lo.Reject(p.Comments, func(c models.Comment, _ int) bool { return c.UserID == userID }))
			if len(likes) == len(p.Likes) && len(comments) == len(p.Comments) {
				continue
			}
			if err := tx.Model(&models.Post{ID: p.ID}).Updates(map[string]any{
				"likes":    likes,
				"comments": comments,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return res.Error
}
