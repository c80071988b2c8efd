package thesis

import (
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

// ThesisHandler handles thesis lifecycle requests
type ThesisHandler struct {
	db        *gorm.DB
	files     *services.FileStore
	validator *validation.Validator
}

// NewThesisHandler creates a new thesis handler
func NewThesisHandler(db *gorm.DB, files *services.FileStore) *ThesisHandler {
	return &ThesisHandler{
		db:        db,
		files:     files,
		validator: validation.NewValidator(),
	}
}

// List returns theses visible to the caller. Students see their own,
// professors the theses they supervise, graduation assistants all of
// them with an optional supervisor_id filter.
func (h *ThesisHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := h.db.Model(&model.Thesis{}).
		Preload("Student").
		Preload("Supervisor")

	switch user.Role {
	case model.RoleStudent:
		query = query.Where("student_id = ?", user.ID)
	case model.RoleProfessor:
		query = query.Where("supervisor_id = ?", user.ID)
	case model.RoleGraduationAssistant:
		if supervisorID := c.Query("supervisor_id"); supervisorID != "" {
			query = query.Where("supervisor_id = ?", supervisorID)
		}
	}

	if status := c.Query("status"); status != "" {
		if !model.ThesisStatus(status).IsValid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	var theses []model.Thesis
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&theses).Error; err != nil {
		return response.InternalServerError(c, "Failed to list theses")
	}

	return response.Success(c, theses)
}

// CreateThesisRequest carries the fields for a new thesis
type CreateThesisRequest struct {
	Title        string     `json:"title" validate:"required,min=3,max=255"`
	Abstract     string     `json:"abstract,omitempty" validate:"omitempty,max=10000"`
	SupervisorID *string    `json:"supervisor_id,omitempty"`
	DefenseDate  *time.Time `json:"defense_date,omitempty"`
}

// Create registers a new draft thesis for the calling student
func (h *ThesisHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if decision := policy.Evaluate(user, policy.ThesisCreate, policy.Resource{}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req CreateThesisRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.SupervisorID != nil && *req.SupervisorID == "" {
		// An empty supervisor_id means no supervisor yet.
		req.SupervisorID = nil
	}
	if req.SupervisorID != nil {
		if err := h.validateSupervisor(c, user, *req.SupervisorID); err != nil {
			return err
		}
	}

	thesis := model.Thesis{
		Title:        req.Title,
		Abstract:     req.Abstract,
		Status:       model.StatusDraft,
		StudentID:    user.ID,
		SupervisorID: req.SupervisorID,
		DefenseDate:  req.DefenseDate,
	}

	if err := h.db.Create(&thesis).Error; err != nil {
		return response.InternalServerError(c, "Failed to create thesis")
	}

	return response.Created(c, thesis)
}

// Get returns a single thesis
func (h *ThesisHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ThesisRead, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	return response.Success(c, thesis)
}

// UpdateThesisRequest carries the updatable thesis fields
type UpdateThesisRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Abstract     *string    `json:"abstract,omitempty" validate:"omitempty,max=10000"`
	Status       *string    `json:"status,omitempty"`
	SupervisorID *string    `json:"supervisor_id,omitempty"`
	DefenseDate  *time.Time `json:"defense_date,omitempty"`
}

// Update applies field changes and status transitions to a thesis
func (h *ThesisHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ThesisUpdate, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req UpdateThesisRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	isOwner := thesis.StudentID == user.ID

	// Owners may only edit content while the thesis is back in their hands
	contentChange := req.Title != nil || req.Abstract != nil || req.DefenseDate != nil
	if contentChange && isOwner && !user.Role.IsReviewer() {
		if thesis.Status != model.StatusDraft && thesis.Status != model.StatusNeedsRevision {
			return response.Forbidden(c, "Thesis can only be edited in draft or needs_revision status")
		}
	}

	if req.Status != nil {
		newStatus := model.ThesisStatus(*req.Status)
		if !newStatus.IsValid() {
			return response.BadRequest(c, "Invalid thesis status")
		}
		if !CanTransition(user.Role, thesis.Status, newStatus) {
			// Students stepping outside their transition lack the
			// permission; reviewers get a plain invalid-transition error.
			if isOwner && !user.Role.IsReviewer() {
				return response.Forbidden(c, "Students can only submit a thesis from draft or needs_revision status")
			}
			return response.BadRequest(c, "Status transition not allowed")
		}

		if newStatus != thesis.Status {
			now := time.Now()
			switch newStatus {
			case model.StatusSubmitted:
				if thesis.SubmissionDate == nil {
					thesis.SubmissionDate = &now
				}
			case model.StatusApproved:
				thesis.ApprovalDate = &now
			}
			thesis.Status = newStatus
		}
	}

	if req.SupervisorID != nil {
		if *req.SupervisorID == "" {
			// An empty supervisor_id clears the assignment. The loaded
			// association must go too or gorm restores the key on save.
			thesis.SupervisorID = nil
			thesis.Supervisor = nil
		} else {
			if err := h.validateSupervisor(c, user, *req.SupervisorID); err != nil {
				return err
			}
			thesis.SupervisorID = req.SupervisorID
			thesis.Supervisor = nil
		}
	}

	if req.Title != nil {
		thesis.Title = *req.Title
	}
	if req.Abstract != nil {
		thesis.Abstract = *req.Abstract
	}
	if req.DefenseDate != nil {
		thesis.DefenseDate = req.DefenseDate
	}

	if err := h.db.Save(thesis).Error; err != nil {
		return response.InternalServerError(c, "Failed to update thesis")
	}

	return response.Success(c, thesis)
}

// Delete removes a draft thesis together with its stored files
func (h *ThesisHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ThesisDelete, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	// Collect file paths before the rows go away
	var attachments []model.ThesisAttachment
	if err := h.db.Where("thesis_id = ?", thesis.ID).Find(&attachments).Error; err != nil {
		return response.InternalServerError(c, "Failed to load attachments")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thesis_id = ?", thesis.ID).Delete(&model.ThesisComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thesis_id = ?", thesis.ID).Delete(&model.ThesisAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thesis_id = ?", thesis.ID).Delete(&model.ThesisCommitteeMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thesis_id = ?", thesis.ID).Delete(&model.AssistantRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thesis_id = ?", thesis.ID).Delete(&model.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(thesis).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete thesis")
	}

	// File removal is best effort, the record is already gone
	for _, a := range attachments {
		h.files.Delete(a.FilePath)
	}
	if thesis.DocumentPath != "" {
		h.files.Delete(thesis.DocumentPath)
	}

	return response.SuccessWithMessage(c, "Thesis deleted successfully", nil)
}

// loadThesis fetches a thesis by ID or writes the 404 response
func (h *ThesisHandler) loadThesis(c *fiber.Ctx, id string) (*model.Thesis, error) {
	var thesis model.Thesis
	err := h.db.Preload("Student").Preload("Supervisor").First(&thesis, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Thesis not found")
		}
		return nil, response.InternalServerError(c, "Failed to load thesis")
	}
	return &thesis, nil
}

// validateSupervisor checks that the supervisor candidate exists, holds
// a reviewer role and is not the caller. Returns a written error response
// when the candidate is not eligible.
func (h *ThesisHandler) validateSupervisor(c *fiber.Ctx, actor *model.User, supervisorID string) error {
	if supervisorID == actor.ID {
		return response.BadRequest(c, "Cannot assign yourself as supervisor")
	}

	var supervisor model.User
	if err := h.db.First(&supervisor, "id = ?", supervisorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Supervisor not found")
		}
		return response.InternalServerError(c, "Failed to load supervisor")
	}

	if !supervisor.Role.IsReviewer() {
		return response.BadRequest(c, "Supervisor must be a professor or graduation assistant")
	}

	return nil
}
