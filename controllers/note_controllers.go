package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"notes-server/middlewares"
	"notes-server/models"
	"notes-server/repository"
	"notes-server/services"
)

const defaultPageSize = 20

type NoteController struct {
	service *services.NoteService
	log     *zap.Logger
}

func NewNoteController(service *services.NoteService, log *zap.Logger) *NoteController {
	return &NoteController{service: service, log: log}
}

// GetNotes handles GET /api/v1/notes with optional search and pagination.
func (nc *NoteController) GetNotes(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	search := c.Query("search")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", defaultPageSize)

	result, err := nc.service.ListNotes(c.Context(), user.SubjectID, search, page, pageSize)
	if err != nil {
		return nc.respondError(c, err, "Failed to fetch notes")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// CreateNote handles POST /api/v1/notes.
func (nc *NoteController) CreateNote(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthenticated"})
	}

	var payload models.NoteCreate
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	note, err := nc.service.CreateNote(c.Context(), user.SubjectID, payload)
	if err != nil {
		return nc.respondError(c, err, "Failed to create note")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// UpdateNote handles PUT /api/v1/notes/:id with a partial payload.
func (nc *NoteController) UpdateNote(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthenticated"})
	}
	id := c.Params("id")

	var payload models.NoteUpdate
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	note, err := nc.service.UpdateNote(c.Context(), id, user.SubjectID, payload)
	if err != nil {
		return nc.respondError(c, err, "Failed to update note")
	}
	return c.Status(fiber.StatusOK).JSON(note)
}

// DeleteNote handles DELETE /api/v1/notes/:id.
func (nc *NoteController) DeleteNote(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthenticated"})
	}
	id := c.Params("id")

	if err := nc.service.DeleteNote(c.Context(), id, user.SubjectID); err != nil {
		return nc.respondError(c, err, "Failed to delete note")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respondError maps service errors onto the HTTP taxonomy: validation to
// 422, missing-or-foreign notes to 404, everything else to 500.
func (nc *NoteController) respondError(c *fiber.Ctx, err error, fallback string) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": ve.Message,
			"field": ve.Field,
		})
	case errors.Is(err, repository.ErrNoteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Note not found"})
	default:
		nc.log.Error("note request failed",
			zap.String("path", c.Path()), zap.String("method", c.Method()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}
