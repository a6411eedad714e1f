package server

import (
	"devconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	var req service.CreatePostInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Create(c.UserContext(), requester, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), requester, postID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/likes/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	likes, err := s.postService.Like(c.UserContext(), requester, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlikes/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	likes, err := s.postService.Unlike(c.UserContext(), requester, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(likes)
}

// AddComment handles POST /api/posts/comments/:id
func (s *Server) AddComment(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CommentInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	comments, err := s.postService.AddComment(c.UserContext(), requester, postID, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/comments/:id/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.postService.DeleteComment(c.UserContext(), requester, postID, c.Params("commentId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}
