package user

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/services"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
)

// UploadProfilePicture replaces the authenticated user's profile picture.
// Accepts jpg, jpeg, png, gif and webp up to 5MB.
func (h *UserHandler) UploadProfilePicture(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	if !services.IsAllowedImage(fileHeader.Filename) {
		return response.BadRequest(c, "File type not allowed. Allowed types: jpg, jpeg, png, gif, webp")
	}
	if fileHeader.Size > services.MaxProfilePictureSize {
		return response.BadRequest(c, "File too large. Maximum size is 5MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	// Remove the previous picture when it was a locally stored file
	if user.ProfilePicture != "" && !strings.HasPrefix(user.ProfilePicture, "http") {
		h.files.Delete(user.ProfilePicture)
	}

	path, _, _, err := h.files.SaveProfilePicture(user.ID, fileHeader.Filename, content)
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	user.ProfilePicture = path
	if err := h.db.Save(user).Error; err != nil {
		h.files.Delete(path)
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, user)
}

// GetProfilePicture serves a user's profile picture file
func (h *UserHandler) GetProfilePicture(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}

	if user.ProfilePicture == "" {
		return response.NotFound(c, "User has no profile picture")
	}

	// Externally hosted pictures redirect to their URL
	if strings.HasPrefix(user.ProfilePicture, "http") {
		return c.Redirect(user.ProfilePicture, fiber.StatusTemporaryRedirect)
	}

	if !h.files.Exists(user.ProfilePicture) {
		return response.NotFound(c, "Profile picture file not found")
	}

	return c.SendFile(h.files.Abs(user.ProfilePicture))
}
