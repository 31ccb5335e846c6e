package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/notepads/controller"
	"github.com/ViniZap4/notepads/domain"
)

// noteBody always carries content, even when it is empty.
type noteBody struct {
	domain.Note
	Content string `json:"content"`
}

func newNoteBody(n *domain.Note) noteBody {
	return noteBody{Note: *n, Content: n.Content}
}

func scopeOf(c *fiber.Ctx) domain.Scope {
	return domain.Scope(c.Query("scope"))
}

func fileOf(c *fiber.Ctx) (string, error) {
	file, err := url.PathUnescape(c.Params("file"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "bad note file name")
	}
	return file, nil
}

func (s *Server) submit(c *fiber.Ctx, in controller.Intent) (controller.View, error) {
	return s.loop.Submit(c.UserContext(), in)
}

func (s *Server) HandleFolders(c *fiber.Ctx) error {
	view, err := s.submit(c, controller.Intent{Kind: controller.Refresh})
	if err != nil {
		return err
	}
	if view.Folders == nil {
		view.Folders = []domain.Folder{}
	}
	return c.JSON(view.Folders)
}

func (s *Server) HandleCreateFolder(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "folder name required")
	}

	if _, err := s.submit(c, controller.Intent{Kind: controller.NewFolder, Name: req.Name}); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(domain.Folder{Name: req.Name})
}

func (s *Server) HandleNotes(c *fiber.Ctx) error {
	view, err := s.submit(c, controller.Intent{Kind: controller.Refresh, Scope: scopeOf(c)})
	if err != nil {
		return err
	}
	return c.JSON(view.Notes)
}

func (s *Server) HandleCreateNote(c *fiber.Ctx) error {
	var req struct {
		Title string       `json:"title"`
		Scope domain.Scope `json:"scope"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := s.submit(c, controller.Intent{Kind: controller.NewNote, Title: req.Title, Scope: req.Scope})
	if err != nil {
		return err
	}
	status := fiber.StatusCreated
	if view.Existed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{"note": newNoteBody(view.Note), "existed": view.Existed})
}

func (s *Server) HandleResolveNote(c *fiber.Ctx) error {
	title := c.Query("title")
	if title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title required")
	}
	view, err := s.submit(c, controller.Intent{Kind: controller.OpenNote, Title: title, Scope: scopeOf(c)})
	if err != nil {
		return err
	}
	return c.JSON(newNoteBody(view.Note))
}

func (s *Server) HandleGetNote(c *fiber.Ctx) error {
	file, err := fileOf(c)
	if err != nil {
		return err
	}
	view, err := s.submit(c, controller.Intent{Kind: controller.OpenNote, File: file, Scope: scopeOf(c)})
	if err != nil {
		return err
	}
	return c.JSON(newNoteBody(view.Note))
}

func (s *Server) HandleUpdateNote(c *fiber.Ctx) error {
	file, err := fileOf(c)
	if err != nil {
		return err
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := s.submit(c, controller.Intent{Kind: controller.SaveNote, File: file, Text: req.Content, Scope: scopeOf(c)})
	if err != nil {
		return err
	}
	return c.JSON(newNoteBody(view.Note))
}

func (s *Server) HandleDeleteNote(c *fiber.Ctx) error {
	file, err := fileOf(c)
	if err != nil {
		return err
	}
	if _, err := s.submit(c, controller.Intent{Kind: controller.DeleteNote, File: file, Scope: scopeOf(c)}); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleRenameNote(c *fiber.Ctx) error {
	file, err := fileOf(c)
	if err != nil {
		return err
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := s.submit(c, controller.Intent{Kind: controller.RenameNote, File: file, Title: req.Title, Scope: scopeOf(c)})
	if err != nil {
		return err
	}
	return c.JSON(view.Note)
}

// HandleIntent accepts any intent and answers with the full view.
func (s *Server) HandleIntent(c *fiber.Ctx) error {
	var in controller.Intent
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	view, err := s.submit(c, in)
	if err != nil {
		return err
	}
	if view.Folders == nil {
		view.Folders = []domain.Folder{}
	}
	return c.JSON(view)
}
