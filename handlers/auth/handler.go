package auth

import (
	"time"

	"gorm.io/gorm"

	"thesistrack/backend/model"
	authutil "thesistrack/backend/utils/auth"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/validation"
)

// AccessTokenTTLSeconds is reported to clients in login responses
const AccessTokenTTLSeconds = 24 * 60 * 60

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	googleVerifier       *authutil.GoogleVerifier
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, googleVerifier *authutil.GoogleVerifier, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		googleVerifier:       googleVerifier,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// UserResponse represents user data in auth responses
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	IsVerified     bool      `json:"is_verified"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TokenPair bundles the issued tokens with the user they belong to
type TokenPair struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           string(user.Role),
		IsActive:       user.IsActive,
		IsVerified:     user.IsVerified,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// issueTokens generates an access and refresh token pair for the user
func (h *AuthHandler) issueTokens(user *model.User) (*TokenPair, error) {
	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    AccessTokenTTLSeconds,
	}, nil
}
