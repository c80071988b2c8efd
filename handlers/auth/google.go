package auth

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/utils/response"
)

// GoogleLoginRequest carries a Google ID token obtained by the client
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// GoogleLogin verifies a Google ID token and signs the user in,
// creating a student account on first sign-in.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	if h.googleVerifier == nil || !h.googleVerifier.Enabled() {
		return response.Error(c, fiber.StatusNotImplemented, "Google sign-in is not configured", "NOT_IMPLEMENTED")
	}

	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.IDToken == "" {
		return response.BadRequest(c, "ID token is required")
	}

	profile, err := h.googleVerifier.Verify(c.Context(), req.IDToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid Google ID token")
	}
	if !profile.EmailVerified {
		return response.BadRequest(c, "Google account email is not verified")
	}

	email := strings.ToLower(profile.Email)
	rawClaims, _ := json.Marshal(profile.RawClaims)

	// Match on provider subject first, then fall back to email linking
	var user model.User
	err = h.db.Where("oauth_provider = ? AND oauth_id = ?", "google", profile.Subject).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		err = h.db.Where("email = ?", email).First(&user).Error
	}

	switch {
	case err == nil:
		user.OAuthProvider = "google"
		user.OAuthID = profile.Subject
		user.OAuthClaims = rawClaims
		user.IsVerified = true
		if user.ProfilePicture == "" && profile.Picture != "" {
			user.ProfilePicture = profile.Picture
		}
		if err := h.db.Save(&user).Error; err != nil {
			return response.InternalServerError(c, "Failed to update user")
		}

	case err == gorm.ErrRecordNotFound:
		user = model.User{
			Email:          email,
			FullName:       profile.FullName,
			Role:           model.RoleStudent,
			IsActive:       true,
			IsVerified:     true,
			ProfilePicture: profile.Picture,
			OAuthProvider:  "google",
			OAuthID:        profile.Subject,
			OAuthClaims:    rawClaims,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return response.InternalServerError(c, "Failed to create user")
		}

	default:
		return response.InternalServerError(c, "Failed to look up user")
	}

	if !user.IsActive {
		return response.BadRequest(c, "Inactive user")
	}

	pair, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, pair)
}
