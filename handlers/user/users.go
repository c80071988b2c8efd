package user

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/services"
	authutil "thesistrack/backend/utils/auth"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
	"thesistrack/backend/utils/validation"
)

// UserHandler handles user profile requests
type UserHandler struct {
	db        *gorm.DB
	files     *services.FileStore
	validator *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, files *services.FileStore) *UserHandler {
	return &UserHandler{
		db:        db,
		files:     files,
		validator: validation.NewValidator(),
	}
}

// List returns users, optionally filtered by role
func (h *UserHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := h.db.Model(&model.User{})
	if role := c.Query("role"); role != "" {
		if !model.UserRole(role).IsValid() {
			return response.BadRequest(c, "Invalid role filter")
		}
		query = query.Where("role = ?", role)
	}

	var users []model.User
	if err := query.Order("full_name ASC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, users)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	return response.Success(c, user)
}

// UpdateMeRequest carries profile fields a user may change
type UpdateMeRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=student professor graduation_assistant"`
}

// UpdateMe updates the authenticated user's profile
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Email != nil && *req.Email != user.Email {
		var existing model.User
		err := h.db.Where("email = ? AND id <> ?", *req.Email, user.ID).First(&existing).Error
		if err == nil {
			return response.Conflict(c, "A user with this email already exists")
		}
		if err != gorm.ErrRecordNotFound {
			return response.InternalServerError(c, "Failed to check existing users")
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Password != nil {
		hashed, err := authutil.HashPassword(*req.Password)
		if err != nil {
			return response.InternalServerError(c, "Failed to process password")
		}
		user.HashedPassword = hashed
	}
	if req.Role != nil {
		user.Role = model.UserRole(*req.Role)
	}

	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, user)
}

// GetByID returns a user's public profile
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}

	return response.Success(c, user)
}
