package routes

import (
	"github.com/gofiber/fiber/v2"

	"notes-server/controllers"
	"notes-server/middlewares"
)

// NoteRoutes mounts the notes API under /api/v1 behind bearer
// authentication.
func NoteRoutes(app *fiber.App, noteController *controllers.NoteController, verifier middlewares.IdentityVerifier) {
	api := app.Group("/api/v1", middlewares.Authenticate(verifier))

	api.Get("/notes", noteController.GetNotes)
	api.Post("/notes", noteController.CreateNote)
	api.Put("/notes/:id", noteController.UpdateNote)
	api.Delete("/notes/:id", noteController.DeleteNote)
}
