package repository

import (
	"context"

	"devconnect/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
	// Mutate applies fn to the post under a row lock and persists its likes
	// and comments. fn sees the latest committed lists, so checks made inside
	// it cannot race with concurrent writers.
	Mutate(ctx context.Context, id uint, fn func(*models.Post) error) (*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func postNotFound() *models.AppError {
	return models.NewNotFoundError("Post not found")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Normalize()
	return translate(r.db.WithContext(ctx).Create(post).Error, postNotFound())
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err, postNotFound())
	}
	post.Normalize()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return postNotFound()
	}
	return nil
}

func (r *postRepository) Mutate(ctx context.Context, id uint, fn func(*models.Post) error) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&post, id).Error; err != nil {
			return err
		}
		post.Normalize()

		if err := fn(&post); err != nil {
			return err
		}

		return tx.Model(&models.Post{ID: post.ID}).Updates(map[string]any{
			"likes":    post.Likes,
			"comments": post.Comments,
		}).Error
	})
	if err != nil {
		return nil, translate(err, postNotFound())
	}
	return &post, nil
}
