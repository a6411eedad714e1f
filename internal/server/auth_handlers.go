package server

import (
	"devconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TokenResponse carries a freshly issued identity token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/identities
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{Token: token})
}

// Login handles POST /api/sessions
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(TokenResponse{Token: token})
}

// GetSessionUser handles GET /api/sessions/me
func (s *Server) GetSessionUser(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.Me(c.UserContext(), requester)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(user)
}
