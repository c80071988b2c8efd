package thesis

import (
	"io"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"thesistrack/backend/model"
	"thesistrack/backend/policy"
	"thesistrack/backend/services"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
)

// UploadDocument stores or replaces the main thesis document. Only the
// owning student may upload, and only while the thesis is editable.
func (h *ThesisHandler) UploadDocument(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	thesis, err := h.loadThesis(c, c.Params("id"))
	if err != nil {
		return err
	}

	if thesis.StudentID != user.ID {
		return response.Forbidden(c, "Only the thesis owner can upload the document")
	}
	if thesis.Status != model.StatusDraft && thesis.Status != model.StatusNeedsRevision {
		return response.BadRequest(c, "Thesis can only be edited in draft or needs_revision status")
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

	previousPath := thesis.DocumentPath

	path, mimeType, size, err := h.files.SaveThesisFile(thesis.ID, fileHeader.Filename, content)
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	thesis.DocumentPath = path
	thesis.DocumentType = mimeType
	thesis.DocumentSize = size

	if err := h.db.Save(thesis).Error; err != nil {
		h.files.Delete(path)
		return response.InternalServerError(c, "Failed to update thesis")
	}

	if previousPath != "" && previousPath != path {
		h.files.Delete(previousPath)
	}

	return response.Success(c, thesis)
}

// DownloadDocument streams the main thesis document
func (h *ThesisHandler) DownloadDocument(c *fiber.Ctx) error {
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

	if thesis.DocumentPath == "" {
		return response.NotFound(c, "Thesis has no document")
	}
	if !h.files.Exists(thesis.DocumentPath) {
		return response.NotFound(c, "Document file not found")
	}

	c.Set(fiber.HeaderContentType, thesis.DocumentType)
	return c.Download(h.files.Abs(thesis.DocumentPath), filepath.Base(thesis.DocumentPath))
}
