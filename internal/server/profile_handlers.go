package server

import (
	"devconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profiles/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	profile, err := s.profileService.Me(c.UserContext(), requester)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profiles
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	var req service.UpsertProfileInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.Upsert(c.UserContext(), requester, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetProfiles handles GET /api/profiles
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profiles/user/:id
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.ByUserID(c.UserContext(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profiles
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteAccount(c.UserContext(), requester); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profiles/experience
func (s *Server) AddExperience(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	var req service.ExperienceInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), requester, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// RemoveExperience handles DELETE /api/profiles/experience/:entryId
func (s *Server) RemoveExperience(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	profile, err := s.profileService.RemoveExperience(c.UserContext(), requester, c.Params("entryId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profiles/education
func (s *Server) AddEducation(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	var req service.EducationInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), requester, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// RemoveEducation handles DELETE /api/profiles/education/:entryId
func (s *Server) RemoveEducation(c *fiber.Ctx) error {
	requester, err := s.requester(c)
	if err != nil {
		return nil
	}

	profile, err := s.profileService.RemoveEducation(c.UserContext(), requester, c.Params("entryId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetGithubRepos handles GET /api/profiles/github/:username
func (s *Server) GetGithubRepos(c *fiber.Ctx) error {
	repos, err := s.profileService.GithubRepos(c.UserContext(), c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(repos)
}
