package http

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"resume-studio/internal/domain"
	"resume-studio/internal/editor"
	"resume-studio/internal/model"
	"resume-studio/internal/render"
	"resume-studio/internal/usecase"
)

type Handler struct {
	session  *usecase.Session
	exporter *usecase.Exporter
	log      *zap.Logger
}

func NewHandler(s *usecase.Session, e *usecase.Exporter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{session: s, exporter: e, log: log}
}

// NewApp builds the fiber app serving h.
func NewApp(h *Handler, token string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             4 << 20,
	})
	h.Register(app, token)
	return app
}

// Register mounts every route on r. A non-empty token guards all of them.
func (h *Handler) Register(r fiber.Router, token string) {
	if token != "" {
		r.Use(BearerAuth(token))
	}
	r.Get("/", h.Preview)
	r.Get("/status", h.Status)

	r.Get("/resume", h.GetResume)
	r.Put("/resume", h.PutResume)
	r.Delete("/resume", h.ResetResume)

	r.Post("/breaks/sections/:section", h.ToggleSectionBreak)
	r.Post("/breaks/experience/:index", h.ToggleExperienceBreak)

	r.Post("/experience", h.AddExperience)
	r.Delete("/experience/:index", h.RemoveExperience)
	r.Post("/experience/:from/move/:to", h.MoveExperience)

	r.Get("/export/:format", h.Export)
	r.Post("/import/json", h.ImportJSON)
	r.Post("/import/reactive", h.ImportReactive)
}

// BearerAuth rejects requests whose Authorization header does not carry token.
func BearerAuth(token string) fiber.Handler {
	want := []byte("Bearer " + token)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get(fiber.HeaderAuthorization))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	opts := render.PreviewOptions{
		SkillsLayout:      render.ParseSkillsLayout(c.Query("skills")),
		ATS:               c.QueryBool("ats", false),
		ShowBreakControls: c.QueryBool("controls", true),
	}
	var buf bytes.Buffer
	if err := render.Preview(&buf, h.session.Current(), opts); err != nil {
		h.log.Error("preview failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "preview failed"})
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(h.session.Status())
}

func (h *Handler) GetResume(c *fiber.Ctx) error {
	return c.JSON(h.session.Current())
}

func (h *Handler) PutResume(c *fiber.Ctx) error {
	if _, err := h.session.ImportJSON(c.Body()); err != nil {
		return invalidFile(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ResetResume(c *fiber.Ctx) error {
	h.session.Reset(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ToggleSectionBreak(c *fiber.Ctx) error {
	s, err := model.ParseSection(c.Params("section"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	r := h.session.Apply(func(r model.Resume) model.Resume { return editor.ToggleSectionBreak(r, s) })
	return h.respond(c, fiber.StatusOK, r)
}

func (h *Handler) ToggleExperienceBreak(c *fiber.Ctx) error {
	i, err := h.roleIndex(c, "index")
	if err != nil {
		return err
	}
	r := h.session.Apply(func(r model.Resume) model.Resume { return editor.ToggleExperienceBreak(r, i) })
	return h.respond(c, fiber.StatusOK, r)
}

func (h *Handler) AddExperience(c *fiber.Ctx) error {
	r := h.session.Apply(editor.AddExperience)
	return h.respond(c, fiber.StatusCreated, r)
}

func (h *Handler) RemoveExperience(c *fiber.Ctx) error {
	i, err := h.roleIndex(c, "index")
	if err != nil {
		return err
	}
	r := h.session.Apply(func(r model.Resume) model.Resume { return editor.RemoveExperienceAt(r, i) })
	return h.respond(c, fiber.StatusOK, r)
}

func (h *Handler) MoveExperience(c *fiber.Ctx) error {
	from, err := h.roleIndex(c, "from")
	if err != nil {
		return err
	}
	to, err := h.roleIndex(c, "to")
	if err != nil {
		return err
	}
	r := h.session.Apply(func(r model.Resume) model.Resume { return editor.MoveExperience(r, from, to) })
	return h.respond(c, fiber.StatusOK, r)
}

func (h *Handler) Export(c *fiber.Ctx) error {
	f, err := domain.ParseFormat(c.Params("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	a, err := h.exporter.Export(c.UserContext(), h.session.Current(), f)
	if err != nil {
		h.log.Error("export failed", zap.String("format", string(f)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}
	c.Attachment(a.FileName)
	c.Set(fiber.HeaderContentType, a.ContentType)
	return c.Send(a.Data)
}

func (h *Handler) ImportJSON(c *fiber.Ctx) error {
	b, err := upload(c)
	if err != nil {
		return invalidFile(c, err)
	}
	r, err := h.session.ImportJSON(b)
	if err != nil {
		return invalidFile(c, err)
	}
	return h.respond(c, fiber.StatusOK, r)
}

func (h *Handler) ImportReactive(c *fiber.Ctx) error {
	b, err := upload(c)
	if err != nil {
		return invalidFile(c, err)
	}
	r, err := h.session.ImportReactive(b)
	if err != nil {
		return invalidFile(c, err)
	}
	return h.respond(c, fiber.StatusOK, r)
}

// roleIndex reads an experience index parameter.
func (h *Handler) roleIndex(c *fiber.Ctx, param string) (int, error) {
	i, err := strconv.Atoi(c.Params(param))
	if err != nil || i < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", param))
	}
	if i >= len(h.session.Current().Experience) {
		return 0, fiber.NewError(fiber.StatusNotFound, "no such role")
	}
	return i, nil
}

// ErrorHandler renders returned errors as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// respond redirects form posts from the preview back to the page and
// returns JSON to everyone else.
func (h *Handler) respond(c *fiber.Ctx, status int, r model.Resume) error {
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		return c.Redirect(backTo(c.Get(fiber.HeaderReferer)), fiber.StatusSeeOther)
	}
	return c.Status(status).JSON(r)
}

// backTo keeps only the path and query of a referer.
func backTo(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	u.Scheme, u.Host, u.User, u.Fragment = "", "", nil, ""
	return u.RequestURI()
}

// upload reads a multipart "file" field, or the raw body otherwise.
func upload(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Body(), nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func invalidFile(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid file", "detail": err.Error()})
}
