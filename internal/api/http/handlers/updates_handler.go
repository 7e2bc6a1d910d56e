package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/nxzen/ticketdesk/internal/api/dto"
	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
	"github.com/nxzen/ticketdesk/internal/storage"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// UpdatesHandler exposes the per-ticket progress thread and attachments.
type UpdatesHandler struct {
	service     *service.TicketService
	attachments repository.AttachmentRepository
	store       *storage.LocalStore
}

// NewUpdatesHandler constructs handler.
func NewUpdatesHandler(ticketService *service.TicketService, attachments repository.AttachmentRepository, store *storage.LocalStore) *UpdatesHandler {
	return &UpdatesHandler{service: ticketService, attachments: attachments, store: store}
}

func publicOnlyFor(c *fiber.Ctx) bool {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User.IsStaff {
		return false
	}
	return true
}

// List handles GET /api/v1/tickets/:id/updates. Non-staff callers see the
// public thread only.
func (h *UpdatesHandler) List(c *fiber.Ctx) error {
	items, err := h.service.ListUpdates(c.Context(), c.Params("id"), publicOnlyFor(c))
	if err != nil {
		return err
	}
	result := make([]dto.UpdateResponse, 0, len(items))
	for i := range items {
		result = append(result, updateResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// Create handles POST /api/v1/tickets/:id/updates. Accepts JSON, or
// multipart form data when files are attached.
func (h *UpdatesHandler) Create(c *fiber.Ctx) error {
	input, err := h.parseUpdateInput(c)
	if err != nil {
		return err
	}

	update, err := h.service.AddUpdate(c.Context(), actorID(c), c.Params("id"), *input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": updateResponse(update)})
}

// ListAll handles GET /api/v1/ticket-updates, optionally filtered by
// ticket_id.
func (h *UpdatesHandler) ListAll(c *fiber.Ctx) error {
	filter := repository.UpdateFilter{
		PublicOnly: publicOnlyFor(c),
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	}
	if raw := c.Query("ticket_id", c.Query("ticket")); raw != "" {
		filter.TicketID = &raw
	}
	items, err := h.service.SearchUpdates(c.Context(), filter)
	if err != nil {
		return err
	}
	result := make([]dto.UpdateResponse, 0, len(items))
	for i := range items {
		result = append(result, updateResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// CreateTopLevel handles POST /api/v1/ticket-updates, where the ticket is
// named in the body instead of the path.
func (h *UpdatesHandler) CreateTopLevel(c *fiber.Ctx) error {
	var req dto.CreateUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	update, err := h.service.AddUpdate(c.Context(), actorID(c), req.TicketID, *buildUpdateInput(req, nil))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": updateResponse(update)})
}

// Get handles GET /api/v1/ticket-updates/:id.
func (h *UpdatesHandler) Get(c *fiber.Ctx) error {
	update, err := h.service.GetUpdate(c.Context(), c.Params("id"), publicOnlyFor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updateResponse(update)})
}

// Edit handles PATCH /api/v1/ticket-updates/:id.
func (h *UpdatesHandler) Edit(c *fiber.Ctx) error {
	var req dto.EditUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	update, err := h.service.EditUpdate(c.Context(), c.Params("id"), service.EditUpdateInput{
		Title:    req.Title,
		Comment:  req.Comment,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updateResponse(update)})
}

// Delete handles DELETE /api/v1/ticket-updates/:id. Stored attachment files
// are removed after the rows are gone; a file left behind is not an error.
func (h *UpdatesHandler) Delete(c *fiber.Ctx) error {
	attachments, err := h.service.DeleteUpdate(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	for _, a := range attachments {
		_ = h.store.Remove(a.StorageKey)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *UpdatesHandler) parseUpdateInput(c *fiber.Ctx) (*service.AddUpdateInput, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		var req dto.CreateUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid payload", nil)
		}
		return buildUpdateInput(req, nil), nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart form", nil)
	}

	req := dto.CreateUpdateRequest{
		Title:   formValue(form.Value, "title"),
		Comment: formValue(form.Value, "comment"),
	}
	if raw := formValue(form.Value, "is_public"); raw != "" {
		public, _ := strconv.ParseBool(raw)
		req.IsPublic = &public
	}
	if raw := formValue(form.Value, "new_status"); raw != "" {
		status := domain.TicketStatus(raw)
		req.NewStatus = &status
	}
	if raw := formValue(form.Value, "time_spent_minutes"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil {
			req.TimeSpentMinutes = &minutes
		}
	}

	var stored []domain.Attachment
	for _, header := range form.File["attachments"] {
		f, err := header.Open()
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable attachment", map[string]any{"filename": header.Filename})
		}
		saved, err := h.store.Save(header.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		stored = append(stored, domain.Attachment{
			StorageKey: saved.Key,
			Filename:   saved.Filename,
			MimeType:   saved.MimeType,
			Size:       saved.Size,
		})
	}

	return buildUpdateInput(req, stored), nil
}

func buildUpdateInput(req dto.CreateUpdateRequest, attachments []domain.Attachment) *service.AddUpdateInput {
	input := &service.AddUpdateInput{
		Title:       req.Title,
		Comment:     req.Comment,
		IsPublic:    true,
		NewStatus:   req.NewStatus,
		Attachments: attachments,
	}
	if req.IsPublic != nil {
		input.IsPublic = *req.IsPublic
	}
	if req.TimeSpentMinutes != nil {
		spent := time.Duration(*req.TimeSpentMinutes) * time.Minute
		input.TimeSpent = &spent
	}
	return input
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// Download handles GET /api/v1/attachments/:id.
func (h *UpdatesHandler) Download(c *fiber.Ctx) error {
	attachment, err := h.attachments.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": c.Params("id")})
		}
		return apperrors.MapError(err)
	}

	f, err := h.store.Open(attachment.StorageKey)
	if err != nil {
		return err
	}
	defer f.Close()

	c.Set(fiber.HeaderContentType, attachment.MimeType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+attachment.Filename+`"`)
	data, err := io.ReadAll(f)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Send(data)
}

func updateResponse(update *domain.TicketUpdate) dto.UpdateResponse {
	resp := dto.UpdateResponse{
		ID:          update.ID,
		TicketID:    update.TicketID,
		Date:        update.Date,
		Title:       update.Title,
		Comment:     update.Comment,
		UserID:      update.UserID,
		IsPublic:    update.IsPublic,
		NewStatus:   update.NewStatus,
		Attachments: make([]dto.AttachmentResponse, 0, len(update.Attachments)),
	}
	if update.TimeSpent != nil {
		spent := update.TimeSpent.String()
		resp.TimeSpent = &spent
	}
	for _, a := range update.Attachments {
		resp.Attachments = append(resp.Attachments, dto.AttachmentResponse{
			ID:       a.ID,
			Filename: a.Filename,
			MimeType: a.MimeType,
			Size:     a.Size,
			Uploaded: a.Uploaded,
			URL:      "/api/v1/attachments/" + a.ID,
		})
	}
	return resp
}
