package review

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/policy"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
	"thesistrack/backend/utils/validation"
)

// ReviewHandler handles thesis review requests
type ReviewHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateReviewRequest carries the fields for a new review
type CreateReviewRequest struct {
	Text                  string `json:"text" validate:"required,min=1"`
	PreliminaryEvaluation int    `json:"preliminary_evaluation" validate:"required,gte=2,lte=6"`
}

// Create records the assigned supervisor's written evaluation
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("thesis_id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ReviewCreate, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	now := time.Now()
	review := model.Review{
		Title:                 fmt.Sprintf("%s review", user.FullName),
		Text:                  req.Text,
		PreliminaryEvaluation: req.PreliminaryEvaluation,
		AssignedAt:            now,
		CompletedAt:           &now,
		ThesisID:              thesis.ID,
		AssistantID:           user.ID,
	}

	if err := h.db.Create(&review).Error; err != nil {
		return response.InternalServerError(c, "Failed to create review")
	}

	return response.Created(c, review)
}

// List returns the reviews of a thesis
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("thesis_id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ReviewList, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var reviews []model.Review
	if err := h.db.Preload("Assistant").
		Where("thesis_id = ?", thesis.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return response.InternalServerError(c, "Failed to list reviews")
	}

	return response.Success(c, reviews)
}

func (h *ReviewHandler) loadThesis(c *fiber.Ctx, id string) (*model.Thesis, error) {
	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Thesis not found")
		}
		return nil, response.InternalServerError(c, "Failed to load thesis")
	}
	return &thesis, nil
}
