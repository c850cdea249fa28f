package race

import (
	"errors"
	"io"

	"backend-runlog/internal/activity"
	"backend-runlog/internal/cache"
	"backend-runlog/internal/storage"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, images *storage.Service, dash *cache.Cache, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		created, err := svc.Create(c.Context(), userID, req)
		if err != nil {
			return mapError(err)
		}
		dash.InvalidateDashboard(c.Context(), userID)
		detail, err := svc.Detail(c.Context(), userID, created.ID)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(detail)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		races, err := svc.List(c.Context(), userID, Status(c.Query("status")))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if races == nil {
			races = []Race{}
		}
		return c.JSON(races)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		detail, err := svc.Detail(c.Context(), userID, c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(detail)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req UpdateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, err := svc.Update(c.Context(), userID, c.Params("id"), req); err != nil {
			return mapError(err)
		}
		dash.InvalidateDashboard(c.Context(), userID)
		detail, err := svc.Detail(c.Context(), userID, c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(detail)
	})

	r.Put("/:id/result", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req ResultInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, err := svc.UpdateResult(c.Context(), userID, c.Params("id"), req); err != nil {
			return mapError(err)
		}
		dash.InvalidateDashboard(c.Context(), userID)
		detail, err := svc.Detail(c.Context(), userID, c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(detail)
	})

	r.Post("/:id/upload-tcx", authMiddleware, func(c *fiber.Ctx) error {
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

		if _, err := svc.LinkByUpload(c.Context(), userID, c.Params("id"), fileHeader.Filename, content); err != nil {
			return mapError(err)
		}
		dash.InvalidateDashboard(c.Context(), userID)
		detail, err := svc.Detail(c.Context(), userID, c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(detail)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Delete(c.Context(), userID, c.Params("id")); err != nil {
			return mapError(err)
		}
		dash.InvalidateDashboard(c.Context(), userID)
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/images", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if _, err := svc.Get(c.Context(), userID, c.Params("id")); err != nil {
			return mapError(err)
		}

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

		img, err := images.SaveRaceImage(c.Context(), c.Params("id"), fileHeader.Filename, content)
		if err != nil {
			if errors.Is(err, storage.ErrImageType) || errors.Is(err, storage.ErrImageTooLarge) || errors.Is(err, storage.ErrTooManyImages) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	})

	r.Delete("/:id/images/:imageID", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if _, err := svc.Get(c.Context(), userID, c.Params("id")); err != nil {
			return mapError(err)
		}
		if err := images.DeleteRaceImage(c.Context(), c.Params("id"), c.Params("imageID")); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "이미지를 찾을 수 없습니다")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Image bytes are served from the stable per-image URL without auth
	// so plain <img> tags can load them.
	r.Get("/:id/images/:imageID/file", func(c *fiber.Ctx) error {
		path, err := images.FilePath(c.Context(), c.Params("id"), c.Params("imageID"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "파일을 찾을 수 없습니다")
		}
		return c.SendFile(path)
	})
}

func mapError(err error) error {
	var dup *activity.DuplicateError
	switch {
	case errors.As(err, &dup):
		return fiber.NewError(fiber.StatusConflict, dup.Detail())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, activity.ErrInvalidFileType), errors.Is(err, activity.ErrMalformedFile):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
