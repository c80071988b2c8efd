package attachment

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"

	"thesistrack/backend/policy"
	"thesistrack/backend/services"
	"thesistrack/backend/utils/middleware"
	"thesistrack/backend/utils/response"
)

// Download streams an attachment's file. Pass ?inline=true to render in
// the browser instead of forcing a download.
func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
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

	if !h.files.Exists(attachment.FilePath) {
		return response.NotFound(c, "Attachment file not found")
	}

	disposition := "attachment"
	if c.QueryBool("inline", false) {
		disposition = "inline"
	}

	c.Set(fiber.HeaderContentType, attachment.FileType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, attachment.Filename))
	return c.SendFile(h.files.Abs(attachment.FilePath))
}

// PreviewResponse is the JSON representation of an extracted preview
type PreviewResponse struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Content  string `json:"content"`
}

// Preview returns a text extraction of the attachment. Supported
// formats are json, html and text; pdf and txt files are previewable.
func (h *AttachmentHandler) Preview(c *fiber.Ctx) error {
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

	format := services.PreviewFormat(c.Query("format", string(services.PreviewJSON)))
	if !format.IsValid() {
		return response.BadRequest(c, "Invalid preview format. Supported formats: json, html, text")
	}

	if !h.preview.Supports(attachment.Filename) {
		return response.BadRequest(c, "Preview not supported for this file type")
	}

	if !h.files.Exists(attachment.FilePath) {
		return response.NotFound(c, "Attachment file not found")
	}

	content, err := os.ReadFile(h.files.Abs(attachment.FilePath))
	if err != nil {
		return response.InternalServerError(c, "Failed to read attachment file")
	}

	text, err := h.preview.Extract(attachment.Filename, content)
	if err != nil {
		return response.InternalServerError(c, "Failed to extract preview")
	}

	switch format {
	case services.PreviewHTML:
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(h.preview.RenderHTML(attachment.Filename, text))
	case services.PreviewText:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(text)
	default:
		return response.Success(c, PreviewResponse{
			Filename: attachment.Filename,
			FileType: attachment.FileType,
			Content:  text,
		})
	}
}
