package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tungkyap/storage-management/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register handles POST /auth/register.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		user, err := svc.Register(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Login handles POST /auth/login.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		token, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(loginResponse{Token: token})
	}
}
