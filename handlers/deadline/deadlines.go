package deadline

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/policy"
	"thesistrack/backend/services"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
	"thesistrack/backend/utils/validation"
)

// DeadlineHandler handles deadline scheduling requests
type DeadlineHandler struct {
	db        *gorm.DB
	deadlines *services.DeadlineService
	validator *validation.Validator
}

// NewDeadlineHandler creates a new deadline handler
func NewDeadlineHandler(db *gorm.DB) *DeadlineHandler {
	return &DeadlineHandler{
		db:        db,
		deadlines: services.NewDeadlineService(db),
		validator: validation.NewValidator(),
	}
}

// DeadlineResponse enriches a deadline with computed scheduling fields
type DeadlineResponse struct {
	model.Deadline
	IsUpcoming    bool `json:"is_upcoming"`
	DaysRemaining int  `json:"days_remaining"`
}

func toDeadlineResponse(d model.Deadline) DeadlineResponse {
	now := time.Now()
	remaining := int(time.Until(d.DeadlineDate).Hours() / 24)
	if remaining < 0 {
		remaining = 0
	}
	return DeadlineResponse{
		Deadline:      d,
		IsUpcoming:    d.IsActive && d.DeadlineDate.After(now),
		DaysRemaining: remaining,
	}
}

func toDeadlineResponses(deadlines []model.Deadline) []DeadlineResponse {
	out := make([]DeadlineResponse, 0, len(deadlines))
	for _, d := range deadlines {
		out = append(out, toDeadlineResponse(d))
	}
	return out
}

// CreateDeadlineRequest carries the fields for a new deadline
type CreateDeadlineRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=255"`
	Description  string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location     string    `json:"location,omitempty" validate:"omitempty,max=255"`
	DeadlineType string    `json:"deadline_type" validate:"required,oneof=submission review defense revision"`
	DeadlineDate time.Time `json:"deadline_date" validate:"required"`
	IsGlobal     *bool     `json:"is_global,omitempty"`
}

// Create schedules a deadline. Defense deadlines atomically create
// their derived submission and review deadlines; the response carries
// every created row.
func (h *DeadlineHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if decision := policy.Evaluate(user, policy.DeadlineManage, policy.Resource{}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req CreateDeadlineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	isGlobal := true
	if req.IsGlobal != nil {
		isGlobal = *req.IsGlobal
	}

	created, err := h.deadlines.Create(services.DeadlineInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		DeadlineType: model.DeadlineType(req.DeadlineType),
		DeadlineDate: req.DeadlineDate,
		IsGlobal:     isGlobal,
		CreatedBy:    user.ID,
	})
	if err != nil {
		if errors.Is(err, services.ErrDeadlineInPast) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to create deadline")
	}

	return response.Created(c, toDeadlineResponses(created))
}

// List returns deadlines. Students only see active global deadlines;
// staff see everything with optional filters.
func (h *DeadlineHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	query := h.db.Model(&model.Deadline{})

	if user.Role == model.RoleStudent {
		query = query.Where("is_active = ? AND is_global = ?", true, true)
	} else {
		// Active deadlines only unless staff explicitly asks for all.
		if c.QueryBool("active_only", true) {
			query = query.Where("is_active = ?", true)
		}
	}

	if deadlineType := c.Query("deadline_type"); deadlineType != "" {
		if !model.DeadlineType(deadlineType).IsValid() {
			return response.BadRequest(c, "Invalid deadline type filter")
		}
		query = query.Where("deadline_type = ?", deadlineType)
	}

	var deadlines []model.Deadline
	if err := query.Order("deadline_date ASC").Find(&deadlines).Error; err != nil {
		return response.InternalServerError(c, "Failed to list deadlines")
	}

	return response.Success(c, toDeadlineResponses(deadlines))
}

// Upcoming returns active deadlines within the next days_ahead days
func (h *DeadlineHandler) Upcoming(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	daysAhead := c.QueryInt("days_ahead", 30)
	if daysAhead < 1 {
		daysAhead = 30
	}

	now := time.Now()
	query := h.db.Model(&model.Deadline{}).
		Where("is_active = ? AND deadline_date > ? AND deadline_date <= ?", true, now, now.AddDate(0, 0, daysAhead))

	if user.Role == model.RoleStudent {
		query = query.Where("is_global = ?", true)
	}

	var deadlines []model.Deadline
	if err := query.Order("deadline_date ASC").Find(&deadlines).Error; err != nil {
		return response.InternalServerError(c, "Failed to list deadlines")
	}

	return response.Success(c, toDeadlineResponses(deadlines))
}

// Get returns a single deadline
func (h *DeadlineHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	deadline, err := h.loadDeadline(c, c.Params("id"))
	if err != nil {
		return err
	}

	// Students only see active global deadlines
	if user.Role == model.RoleStudent && (!deadline.IsActive || !deadline.IsGlobal) {
		return response.NotFound(c, "Deadline not found")
	}

	return response.Success(c, toDeadlineResponse(*deadline))
}

// UpdateDeadlineRequest carries the updatable deadline fields
type UpdateDeadlineRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location     *string    `json:"location,omitempty" validate:"omitempty,max=255"`
	DeadlineDate *time.Time `json:"deadline_date,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
	IsGlobal     *bool      `json:"is_global,omitempty"`
}

// Update edits a deadline
func (h *DeadlineHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if decision := policy.Evaluate(user, policy.DeadlineManage, policy.Resource{}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	deadline, err := h.loadDeadline(c, c.Params("id"))
	if err != nil {
		return err
	}

	var req UpdateDeadlineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.DeadlineDate != nil {
		if !req.DeadlineDate.After(time.Now()) {
			return response.BadRequest(c, "Deadline date must be in the future")
		}
		deadline.DeadlineDate = *req.DeadlineDate
	}
	if req.Title != nil {
		deadline.Title = *req.Title
	}
	if req.Description != nil {
		deadline.Description = *req.Description
	}
	if req.Location != nil {
		deadline.Location = *req.Location
	}
	if req.IsActive != nil {
		deadline.IsActive = *req.IsActive
	}
	if req.IsGlobal != nil {
		deadline.IsGlobal = *req.IsGlobal
	}

	if err := h.db.Save(deadline).Error; err != nil {
		return response.InternalServerError(c, "Failed to update deadline")
	}

	return response.Success(c, toDeadlineResponse(*deadline))
}

// Delete removes a deadline
func (h *DeadlineHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if decision := policy.Evaluate(user, policy.DeadlineManage, policy.Resource{}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	deadline, err := h.loadDeadline(c, c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.db.Delete(deadline).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete deadline")
	}

	return response.SuccessWithMessage(c, "Deadline deleted successfully", nil)
}

func (h *DeadlineHandler) loadDeadline(c *fiber.Ctx, id string) (*model.Deadline, error) {
	var deadline model.Deadline
	if err := h.db.First(&deadline, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Deadline not found")
		}
		return nil, response.InternalServerError(c, "Failed to load deadline")
	}
	return &deadline, nil
}
