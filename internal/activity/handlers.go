package activity

import (
	"errors"
	"io"
	"strconv"

	"backend-runlog/internal/cache"
	"backend-runlog/internal/shared/localtime"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, dash *cache.Cache, norm localtime.Normalizer, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file unreadable")
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file unreadable")
		}

		activities, err := svc.Ingest(c.Context(), userID, fileHeader.Filename, content)
		if err != nil {
			var dup *DuplicateError
			if errors.As(err, &dup) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": dup.Detail()})
			}
			if errors.Is(err, ErrInvalidFileType) || errors.Is(err, ErrMalformedFile) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		dash.InvalidateDashboard(c.Context(), userID)
		return c.Status(fiber.StatusCreated).JSON(activities)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		activities, err := svc.List(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if activities == nil {
			activities = []Activity{}
		}
		return c.JSON(activities)
	})

	// Registered before /:id so "filters" is not captured as an id.
	r.Get("/filters", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		activities, err := svc.List(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		year := 0
		if raw := c.Query("year"); raw != "" && raw != "all" {
			year, err = strconv.Atoi(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "year must be a number or \"all\"")
			}
		}

		return c.JSON(fiber.Map{
			"years":  Years(activities, norm),
			"months": Months(activities, year, norm),
		})
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		a, err := svc.Get(c.Context(), userID, c.Params("id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "활동을 찾을 수 없습니다")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(a)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Delete(c.Context(), userID, c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "활동을 찾을 수 없습니다")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		dash.InvalidateDashboard(c.Context(), userID)
		return c.SendStatus(fiber.StatusNoContent)
	})
}
