package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/policy"
	"devconnect/internal/repository"
	"devconnect/internal/sublist"
	"devconnect/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	now      func() time.Time
	newID    func() string
}

type CreatePostInput struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type CommentInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create stores a post with a snapshot of the author's name and avatar.
func (s *PostService) Create(ctx context.Context, requester auth.Identity, in CreatePostInput) (*models.Post, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, requester.ID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: author.ID,
		Text:   in.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.RecordEvent("post_created")
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}

// Get returns one post.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// Delete removes a post. Only its author may delete it.
func (s *PostService) Delete(ctx context.Context, requester auth.Identity, id uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(post.UserID, requester, "delete this post"); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	observability.RecordEvent("post_deleted")
	return nil
}

// Like records the requester's like. A second like by the same user is a conflict.
func (s *PostService) Like(ctx context.Context, requester auth.Identity, postID uint) ([]models.Like, error) {
	ctx, span := observability.StartSpan(ctx, "PostService.Like", attribute.Int64("post.id", int64(postID)))
	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		likes, err := sublist.InsertUnique(p.Likes,
			models.Like{UserID: requester.ID, CreatedAt: s.now()},
			likedBy(requester.ID))
		if errors.Is(err, sublist.ErrDuplicate) {
			return models.NewConflictError("Post already liked")
		}
		p.Likes = likes
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	observability.RecordEvent("post_liked")
	return post.Likes, nil
}

// Unlike removes the requester's like. Unliking a post that was never liked is a conflict.
func (s *PostService) Unlike(ctx context.Context, requester auth.Identity, postID uint) ([]models.Like, error) {
	ctx, span := observability.StartSpan(ctx, "PostService.Unlike", attribute.Int64("post.id", int64(postID)))
	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		likes, _, err := sublist.RemoveFirst(p.Likes, likedBy(requester.ID))
		if errors.Is(err, sublist.ErrNotFound) {
			return models.NewConflictError("Post has not yet been liked")
		}
		p.Likes = likes
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	observability.RecordEvent("post_unliked")
	return post.Likes, nil
}

func likedBy(userID uint) func(models.Like) bool {
	return func(l models.Like) bool {
		return l.UserID == userID
	}
}

// AddComment prepends a comment by the requester and returns the post's comments.
func (s *PostService) AddComment(ctx context.Context, requester auth.Identity, postID uint, in CommentInput) ([]models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, requester.ID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        s.newID(),
		UserID:    author.ID,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Text:      in.Text,
		CreatedAt: s.now(),
	}

	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		p.Comments = sublist.Prepend(p.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.RecordEvent("comment_added")
	return post.Comments, nil
}

// DeleteComment removes a comment. Only the comment's author may remove it.
func (s *PostService) DeleteComment(ctx context.Context, requester auth.Identity, postID uint, commentID string) ([]models.Comment, error) {
	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		comment, ok := sublist.Find(p.Comments, sublist.ByID[models.Comment](commentID))
		if !ok {
			return models.NewNotFoundError("Comment does not exist")
		}
		if err := policy.Authorize(comment.UserID, requester, "delete this comment"); err != nil {
			return err
		}
		comments, _, err := sublist.RemoveByID(p.Comments, commentID)
		if err != nil {
			return models.NewNotFoundError("Comment does not exist")
		}
		p.Comments = comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.RecordEvent("comment_deleted")
	return post.Comments, nil
}
