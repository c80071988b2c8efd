package comment

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/policy"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
	"thesistrack/backend/utils/validation"
)

// CommentHandler handles thesis comment requests
type CommentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// List returns the comments of a thesis as a tree. Comments are stored
// flat; replies are attached to their parents at read time.
func (h *CommentHandler) List(c *fiber.Ctx) error {
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

	var comments []model.ThesisComment
	if err := h.db.Preload("User").
		Where("thesis_id = ?", thesis.ID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return response.InternalServerError(c, "Failed to list comments")
	}

	return response.Success(c, buildCommentTree(comments))
}

// buildCommentTree nests replies under their parent comments to
// arbitrary depth. Links are collected in a child index first and
// copies materialized only once all of them are known, so a reply that
// is itself a parent keeps its own replies. Orphaned replies whose
// parent is gone surface as top level.
func buildCommentTree(comments []model.ThesisComment) []model.ThesisComment {
	present := make(map[string]bool, len(comments))
	for i := range comments {
		present[comments[i].ID] = true
	}

	children := make(map[string][]*model.ThesisComment)
	var rootRefs []*model.ThesisComment
	for i := range comments {
		c := &comments[i]
		if c.ParentID != nil && present[*c.ParentID] {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		rootRefs = append(rootRefs, c)
	}

	var materialize func(c *model.ThesisComment) model.ThesisComment
	materialize = func(c *model.ThesisComment) model.ThesisComment {
		out := *c
		out.Replies = nil
		for _, child := range children[c.ID] {
			out.Replies = append(out.Replies, materialize(child))
		}
		return out
	}

	roots := make([]model.ThesisComment, 0, len(rootRefs))
	for _, r := range rootRefs {
		roots = append(roots, materialize(r))
	}
	return roots
}

// CreateCommentRequest carries the fields for a new comment
type CreateCommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=10000"`
	ParentID *string `json:"parent_id,omitempty"`
}

// Create adds a comment or reply to a thesis
func (h *CommentHandler) Create(c *fiber.Ctx) error {
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
	if decision := policy.Evaluate(user, policy.CommentCreate, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// A reply's parent must exist on the same thesis
	if req.ParentID != nil {
		var parent model.ThesisComment
		if err := h.db.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Parent comment not found")
			}
			return response.InternalServerError(c, "Failed to load parent comment")
		}
		if parent.ThesisID != thesis.ID {
			return response.BadRequest(c, "Parent comment belongs to a different thesis")
		}
	}

	comment := model.ThesisComment{
		Content:  req.Content,
		ThesisID: thesis.ID,
		UserID:   user.ID,
		ParentID: req.ParentID,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		return response.InternalServerError(c, "Failed to create comment")
	}

	h.db.Preload("User").First(&comment, "id = ?", comment.ID)

	return response.Created(c, comment)
}

// UpdateCommentRequest carries the updatable comment fields
type UpdateCommentRequest struct {
	Content    *string `json:"content,omitempty" validate:"omitempty,min=1,max=10000"`
	IsResolved *bool   `json:"is_resolved,omitempty"`
}

// Update edits a comment. Authors may change any field; reviewer roles
// may only toggle the resolved flag on other users' comments.
func (h *CommentHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	comment, err := h.loadComment(c, c.Params("id"))
	if err != nil {
		return err
	}

	var req UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// The caller must hold at least one update permission on the
	// comment before any write, including a no-op save.
	editDecision := policy.Evaluate(user, policy.CommentEdit, policy.Resource{Comment: comment})
	resolveDecision := policy.Evaluate(user, policy.CommentResolve, policy.Resource{Comment: comment})
	if !editDecision.Allowed && !resolveDecision.Allowed {
		return response.Forbidden(c, editDecision.Reason)
	}

	if req.Content != nil {
		if !editDecision.Allowed {
			return response.Forbidden(c, editDecision.Reason)
		}
		comment.Content = *req.Content
	}

	if req.IsResolved != nil {
		if !resolveDecision.Allowed {
			return response.Forbidden(c, resolveDecision.Reason)
		}
		comment.IsResolved = *req.IsResolved
	}

	if err := h.db.Save(comment).Error; err != nil {
		return response.InternalServerError(c, "Failed to update comment")
	}

	return response.Success(c, comment)
}

// Delete removes a comment and its replies
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	comment, err := h.loadComment(c, c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.CommentDelete, policy.Resource{Comment: comment}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&model.ThesisComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(comment).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete comment")
	}

	return response.SuccessWithMessage(c, "Comment deleted successfully", nil)
}

func (h *CommentHandler) loadThesis(c *fiber.Ctx, id string) (*model.Thesis, error) {
	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Thesis not found")
		}
		return nil, response.InternalServerError(c, "Failed to load thesis")
	}
	return &thesis, nil
}

func (h *CommentHandler) loadComment(c *fiber.Ctx, id string) (*model.ThesisComment, error) {
	var comment model.ThesisComment
	if err := h.db.First(&comment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Comment not found")
		}
		return nil, response.InternalServerError(c, "Failed to load comment")
	}
	return &comment, nil
}
