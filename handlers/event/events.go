package event

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/policy"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
	"thesistrack/backend/utils/validation"
)

// EventHandler handles calendar event requests
type EventHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// List returns the caller's events, optionally bounded by a date range
func (h *EventHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	query := h.db.Model(&model.Event{}).Where("user_id = ?", user.ID)

	if start := c.Query("start"); start != "" {
		startTime, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return response.BadRequest(c, "Invalid start filter, expected RFC3339 timestamp")
		}
		query = query.Where("end_time >= ?", startTime)
	}
	if end := c.Query("end"); end != "" {
		endTime, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return response.BadRequest(c, "Invalid end filter, expected RFC3339 timestamp")
		}
		query = query.Where("start_time <= ?", endTime)
	}

	var events []model.Event
	if err := query.Order("start_time ASC").Find(&events).Error; err != nil {
		return response.InternalServerError(c, "Failed to list events")
	}

	return response.Success(c, events)
}

// CreateEventRequest carries the fields for a new event
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	IsAllDay    bool      `json:"is_all_day"`
	Location    string    `json:"location,omitempty" validate:"omitempty,max=255"`
	ThesisID    *string   `json:"thesis_id,omitempty"`
}

// Create adds a calendar event for the caller
func (h *EventHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.EndTime.Before(req.StartTime) {
		return response.BadRequest(c, "End time cannot be before start time")
	}

	if req.ThesisID != nil {
		if err := h.validateThesisLink(c, user, *req.ThesisID); err != nil {
			return err
		}
	}

	event := model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAllDay:    req.IsAllDay,
		Location:    req.Location,
		ThesisID:    req.ThesisID,
		UserID:      user.ID,
	}

	if err := h.db.Create(&event).Error; err != nil {
		return response.InternalServerError(c, "Failed to create event")
	}

	return response.Created(c, event)
}

// Get returns a single event
func (h *EventHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	event, err := h.loadEvent(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.EventRead, policy.Resource{Event: event}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	return response.Success(c, event)
}

// UpdateEventRequest carries the updatable event fields
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	IsAllDay    *bool      `json:"is_all_day,omitempty"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=255"`
}

// Update edits an event
func (h *EventHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	event, err := h.loadEvent(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.EventUpdate, policy.Resource{Event: event}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if event.EndTime.Before(event.StartTime) {
		return response.BadRequest(c, "End time cannot be before start time")
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.IsAllDay != nil {
		event.IsAllDay = *req.IsAllDay
	}
	if req.Location != nil {
		event.Location = *req.Location
	}

	if err := h.db.Save(event).Error; err != nil {
		return response.InternalServerError(c, "Failed to update event")
	}

	return response.Success(c, event)
}

// Delete removes an event
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	event, err := h.loadEvent(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.EventDelete, policy.Resource{Event: event}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	if err := h.db.Delete(event).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete event")
	}

	return response.SuccessWithMessage(c, "Event deleted successfully", nil)
}

func (h *EventHandler) loadEvent(c *fiber.Ctx, id string) (*model.Event, error) {
	var event model.Event
	if err := h.db.First(&event, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Event not found")
		}
		return nil, response.InternalServerError(c, "Failed to load event")
	}
	return &event, nil
}

// validateThesisLink checks the linked thesis exists and that students
// only link their own theses.
func (h *EventHandler) validateThesisLink(c *fiber.Ctx, user *model.User, thesisID string) error {
	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", thesisID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Thesis not found")
		}
		return response.InternalServerError(c, "Failed to load thesis")
	}

	if user.Role == model.RoleStudent && thesis.StudentID != user.ID {
		return response.Forbidden(c, "You can only link events to your own thesis")
	}

	return nil
}
