package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shahriar-rahim/socialite/backend/internal/repositories"
)

// UserHandler handles user profile requests
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.Me)
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.Public()})
}
