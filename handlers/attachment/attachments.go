package attachment

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/policy"
	"thesistrack/backend/services"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
	"thesistrack/backend/utils/validation"
)

// AttachmentHandler handles thesis attachment requests
type AttachmentHandler struct {
	db        *gorm.DB
	files     *services.FileStore
	preview   *services.PreviewService
	validator *validation.Validator
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(db *gorm.DB, files *services.FileStore) *AttachmentHandler {
	return &AttachmentHandler{
		db:        db,
		files:     files,
		preview:   services.NewPreviewService(),
		validator: validation.NewValidator(),
	}
}

// List returns the attachments of a thesis
func (h *AttachmentHandler) List(c *fiber.Ctx) error {
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

	var attachments []model.ThesisAttachment
	if err := h.db.Preload("Uploader").
		Where("thesis_id = ?", thesis.ID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return response.InternalServerError(c, "Failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Get returns a single attachment record
func (h *AttachmentHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	attachment, thesis, err := h.loadAttachment(c, c.Params("thesis_id"), c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.ThesisRead, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	return response.Success(c, attachment)
}

// Upload stores a new attachment on a thesis
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("thesis_id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.AttachmentUpload, policy.Resource{Thesis: thesis}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	if !services.IsAllowedAttachment(fileHeader.Filename) {
		return response.BadRequest(c, "File type not allowed. Allowed types: pdf, doc, docx, txt")
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

	path, mimeType, size, err := h.files.SaveThesisFile(thesis.ID, fileHeader.Filename, content)
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	attachment := model.ThesisAttachment{
		Filename:    fileHeader.Filename,
		FilePath:    path,
		FileType:    mimeType,
		FileSize:    size,
		Description: c.FormValue("description"),
		ThesisID:    thesis.ID,
		UploadedBy:  user.ID,
	}

	if err := h.db.Create(&attachment).Error; err != nil {
		h.files.Delete(path)
		return response.InternalServerError(c, "Failed to save attachment")
	}

	return response.Created(c, attachment)
}

// Replace swaps the stored file of an existing attachment
func (h *AttachmentHandler) Replace(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	attachment, thesis, err := h.loadAttachment(c, c.Params("thesis_id"), c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.AttachmentReplace, policy.Resource{Thesis: thesis, Attachment: attachment}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	if !services.IsAllowedAttachment(fileHeader.Filename) {
		return response.BadRequest(c, "File type not allowed. Allowed types: pdf, doc, docx, txt")
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

	path, mimeType, size, err := h.files.SaveThesisFile(thesis.ID, fileHeader.Filename, content)
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	previousPath := attachment.FilePath

	attachment.Filename = fileHeader.Filename
	attachment.FilePath = path
	attachment.FileType = mimeType
	attachment.FileSize = size
	if desc := c.FormValue("description"); desc != "" {
		attachment.Description = desc
	}

	if err := h.db.Save(attachment).Error; err != nil {
		h.files.Delete(path)
		return response.InternalServerError(c, "Failed to update attachment")
	}

	h.files.Delete(previousPath)

	return response.Success(c, attachment)
}

// Delete removes an attachment record. The stored file is deleted best
// effort; the record goes away regardless.
func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	attachment, thesis, err := h.loadAttachment(c, c.Params("thesis_id"), c.Params("id"))
	if err != nil {
		return err
	}

	if decision := policy.Evaluate(user, policy.AttachmentDelete, policy.Resource{Thesis: thesis, Attachment: attachment}); !decision.Allowed {
		return response.Forbidden(c, decision.Reason)
	}

	if err := h.db.Delete(attachment).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete attachment")
	}

	h.files.Delete(attachment.FilePath)

	return response.SuccessWithMessage(c, "Attachment deleted successfully", nil)
}

func (h *AttachmentHandler) loadThesis(c *fiber.Ctx, id string) (*model.Thesis, error) {
	var thesis model.Thesis
	if err := h.db.First(&thesis, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Thesis not found")
		}
		return nil, response.InternalServerError(c, "Failed to load thesis")
	}
	return &thesis, nil
}

func (h *AttachmentHandler) loadAttachment(c *fiber.Ctx, thesisID, id string) (*model.ThesisAttachment, *model.Thesis, error) {
	thesis, err := h.loadThesis(c, thesisID)
	if err != nil {
		return nil, nil, err
	}

	var attachment model.ThesisAttachment
	if err := h.db.Where("thesis_id = ?", thesis.ID).First(&attachment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, response.NotFound(c, "Attachment not found")
		}
		return nil, nil, response.InternalServerError(c, "Failed to load attachment")
	}

	return &attachment, thesis, nil
}
