package committee

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

// CommitteeHandler handles thesis committee requests
type CommitteeHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCommitteeHandler creates a new committee handler
func NewCommitteeHandler(db *gorm.DB) *CommitteeHandler {
	return &CommitteeHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// List returns the committee members of a thesis
func (h *CommitteeHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("thesis_id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ThesisRead, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var members []model.ThesisCommitteeMember
	if err := h.db.Preload("User").
		Where("thesis_id = ?", thesis.ID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return response.InternalServerError(c, "Failed to list committee members")
	}

	return response.Success(c, members)
}

// AddMemberRequest carries the fields for a new committee member
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=chair reviewer advisor external"`
}

// Add appoints a user to a thesis defense committee
func (h *CommitteeHandler) Add(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("thesis_id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.CommitteeManage, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var candidate model.User
	if err := h.db.First(&candidate, "id = ?", req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}

	if !candidate.Role.IsReviewer() {
		return response.BadRequest(c, "Committee members must be professors or graduation assistants")
	}

	// One membership per user per thesis
	var existing model.ThesisCommitteeMember
	err = h.db.Where("thesis_id = ? AND user_id = ?", thesis.ID, candidate.ID).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "User is already a committee member for this thesis")
	}
	if err != gorm.ErrRecordNotFound {
		return response.InternalServerError(c, "Failed to check committee membership")
	}

	member := model.ThesisCommitteeMember{
		ThesisID: thesis.ID,
		UserID:   candidate.ID,
		Role:     model.CommitteeMemberRole(req.Role),
	}

	if err := h.db.Create(&member).Error; err != nil {
		return response.InternalServerError(c, "Failed to add committee member")
	}

	h.db.Preload("User").First(&member, "id = ?", member.ID)

	return response.Created(c, member)
}

// UpdateMemberRequest carries the updatable membership fields
type UpdateMemberRequest struct {
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=chair reviewer advisor external"`
	HasApproved *bool   `json:"has_approved,omitempty"`
}

// Update edits a committee membership. The supervisor or a professor may
// change any field; the member themself may only toggle their approval.
func (h *CommitteeHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	member, thesis, err := h.loadMember(c, c.Params("id"))
	if err != nil {
		return err
	}

	var req UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	fullUpdate := policy.Evaluate(user, policy.CommitteeUpdate, policy.Resource{Thesis: thesis, Member: member})
	selfApproval := policy.Evaluate(user, policy.CommitteeApprove, policy.Resource{Thesis: thesis, Member: member})

	// The caller must hold at least one update permission on the
	// membership before any write, including a no-op save.
	if !fullUpdate.Allowed && !selfApproval.Allowed {
		return response.Forbidden(c, fullUpdate.Reason)
	}

	if req.Role != nil {
		if !fullUpdate.Allowed {
			return response.Forbidden(c, fullUpdate.Reason)
		}
		member.Role = model.CommitteeMemberRole(*req.Role)
	}

	if req.HasApproved != nil {
		if !fullUpdate.Allowed && !selfApproval.Allowed {
			return response.Forbidden(c, selfApproval.Reason)
		}
		member.HasApproved = *req.HasApproved
		if *req.HasApproved {
			now := time.Now()
			member.ApprovalDate = &now
		} else {
			member.ApprovalDate = nil
		}
	}

	if err := h.db.Save(member).Error; err != nil {
		return response.InternalServerError(c, "Failed to update committee member")
	}

	return response.Success(c, member)
}

// Remove deletes a committee membership
func (h *CommitteeHandler) Remove(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	member, thesis, err := h.loadMember(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.CommitteeManage, policy.Resource{Thesis: thesis, Member: member}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	if err := h.db.Delete(member).Error; err != nil {
		return response.InternalServerError(c, "Failed to remove committee member")
	}

	return response.SuccessWithMessage(c, "Committee member removed successfully", nil)
}

func (h *CommitteeHandler) loadThesis(c *fiber.Ctx, id string) (*model.Thesis, error) {
	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Thesis not found")
		}
		return nil, response.InternalServerError(c, "Failed to load thesis")
	}
	return &thesis, nil
}

func (h *CommitteeHandler) loadMember(c *fiber.Ctx, id string) (*model.ThesisCommitteeMember, *model.Thesis, error) {
	var member model.ThesisCommitteeMember
	if err := h.db.First(&member, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, response.NotFound(c, "Committee member not found")
		}
		return nil, nil, response.InternalServerError(c, "Failed to load committee member")
	}

	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", member.ThesisID).Error; err != nil {
		return nil, nil, response.InternalServerError(c, "Failed to load thesis")
	}

	return &member, &thesis, nil
}
