package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	authutil "thesistrack/backend/utils/auth"
	"thesistrack/backend/utils/response"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=student professor graduation_assistant"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// Register handles new account creation
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role := model.RoleStudent
	if req.Role != "" {
		role = model.UserRole(req.Role)
	}

	// Reject duplicate emails before hashing
	var existing model.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "A user with this email already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return response.InternalServerError(c, "Failed to check existing users")
	}

	hashed, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashed,
		Role:           role,
		Bio:            req.Bio,
		IsActive:       true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	pair, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Created(c, pair)
}
