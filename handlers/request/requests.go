package request

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

// RequestHandler handles assistant request workflow requests
type RequestHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(db *gorm.DB) *RequestHandler {
	return &RequestHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateRequestRequest carries the fields for a new assistant request
type CreateRequestRequest struct {
	ThesisID    string `json:"thesis_id" validate:"required"`
	AssistantID string `json:"assistant_id" validate:"required"`
}

// Create files a request pairing the caller's draft thesis with a
// graduation assistant.
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if user.Role != model.RoleStudent {
		return response.Forbidden(c, "Only students can create assistant requests")
	}

	var req CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", req.ThesisID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Thesis not found")
		}
		return response.InternalServerError(c, "Failed to load thesis")
	}

	if thesis.StudentID != user.ID {
		return response.Forbidden(c, "You can only request assistants for your own thesis")
	}
	if thesis.Status != model.StatusDraft {
		return response.BadRequest(c, "Assistant requests can only be created for draft theses")
	}

	var assistant model.User
	if err := h.db.Where("id = ? AND role = ?", req.AssistantID, model.RoleGraduationAssistant).First(&assistant).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Graduation assistant not found")
		}
		return response.InternalServerError(c, "Failed to load assistant")
	}

	// One pending request per thesis
	var pending int64
	if err := h.db.Model(&model.AssistantRequest{}).
		Where("thesis_id = ? AND status = ?", thesis.ID, model.RequestRequested).
		Count(&pending).Error; err != nil {
		return response.InternalServerError(c, "Failed to check existing requests")
	}
	if pending > 0 {
		return response.BadRequest(c, "A pending request already exists for this thesis")
	}

	// A declined pairing cannot be retried
	var declined int64
	if err := h.db.Model(&model.AssistantRequest{}).
		Where("thesis_id = ? AND assistant_id = ? AND status = ?", thesis.ID, assistant.ID, model.RequestDeclined).
		Count(&declined).Error; err != nil {
		return response.InternalServerError(c, "Failed to check existing requests")
	}
	if declined > 0 {
		return response.BadRequest(c, "This assistant has already declined a request for this thesis")
	}

	request := model.AssistantRequest{
		Status:      model.RequestRequested,
		StudentID:   user.ID,
		AssistantID: assistant.ID,
		ThesisID:    thesis.ID,
	}

	if err := h.db.Create(&request).Error; err != nil {
		return response.InternalServerError(c, "Failed to create request")
	}

	return response.Created(c, request)
}

// RespondRequest carries the assistant's decision
type RespondRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// Respond lets the assigned assistant accept or decline a pending
// request. Acceptance moves the thesis to under_review and assigns the
// assistant as supervisor when none is set.
func (h *RequestHandler) Respond(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	request, err := h.loadRequest(c, c.Params("id"))
	if err != nil {
		return err
	}

	if request.AssistantID != user.ID {
		return response.Forbidden(c, "Only the requested assistant can respond to this request")
	}
	if request.Status != model.RequestRequested {
		return response.BadRequest(c, "Request has already been resolved")
	}

	var req RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	now := time.Now()
	newStatus := model.RequestStatus(req.Status)

	err = h.db.Transaction(func(tx *gorm.DB) error {
		request.Status = newStatus
		request.ResolvedAt = &now
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		if newStatus != model.RequestAccepted {
			return nil
		}

		var thesis model.Thesis
		if err := tx.First(&thesis, "id = ?", request.ThesisID).Error; err != nil {
			return err
		}

		thesis.Status = model.StatusUnderReview
		if thesis.SupervisorID == nil {
			thesis.SupervisorID = &request.AssistantID
		}
		return tx.Save(&thesis).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve request")
	}

	return response.Success(c, request)
}

// List returns the caller's requests. Students see requests they sent,
// assistants requests addressed to them.
func (h *RequestHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	query := h.db.Model(&model.AssistantRequest{}).
		Preload("Student").
		Preload("Assistant").
		Preload("Thesis")

	switch user.Role {
	case model.RoleStudent:
		query = query.Where("student_id = ?", user.ID)
	case model.RoleGraduationAssistant:
		query = query.Where("assistant_id = ?", user.ID)
	}

	if status := c.Query("status"); status != "" {
		if !model.RequestStatus(status).IsValid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	var requests []model.AssistantRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, requests)
}

// Get returns a single request visible to its participants or a professor
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	request, err := h.loadRequest(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.RequestRead, policy.Resource{Request: request}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	return response.Success(c, request)
}

// Cancel lets the requesting student withdraw a pending request
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	request, err := h.loadRequest(c, c.Params("id"))
	if err != nil {
		return err
	}

	if request.StudentID != user.ID {
		return response.Forbidden(c, "Only the requesting student can cancel this request")
	}
	if request.Status != model.RequestRequested {
		return response.BadRequest(c, "Only pending requests can be cancelled")
	}

	if err := h.db.Delete(request).Error; err != nil {
		return response.InternalServerError(c, "Failed to cancel request")
	}

	return response.SuccessWithMessage(c, "Request cancelled successfully", nil)
}

func (h *RequestHandler) loadRequest(c *fiber.Ctx, id string) (*model.AssistantRequest, error) {
	var request model.AssistantRequest
	err := h.db.Preload("Student").Preload("Assistant").Preload("Thesis").First(&request, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Request not found")
		}
		return nil, response.InternalServerError(c, "Failed to load request")
	}
	return &request, nil
}
