package handlers

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"notekeep/models"
)

func success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func serverError(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// listOptions reads pagination/order query params.
func listOptions(c *fiber.Ctx) models.ListOptions {
	return models.ListOptions{
		Limit:   c.QueryInt("limit", 30),
		Offset:  c.QueryInt("offset", 0),
		OrderBy: c.Query("order_by"),
		Desc:    c.QueryBool("desc", true),
	}
}

// noteFilter reads the full note filter surface from query params.
// folder_id is tri-state: absent, the literal "null", or a folder id.
func noteFilter(c *fiber.Ctx) models.NoteFilter {
	f := models.NoteFilter{
		IncludeDeleted: c.QueryBool("include_deleted", false),
		OnlyDeleted:    c.QueryBool("only_deleted", false),
		Search:         c.Query("search"),
		ListOptions:    listOptions(c),
	}

	if folder := c.Query("folder_id"); folder != "" {
		if folder == "null" {
			f.FolderID = models.NullField[string]()
		} else {
			f.FolderID = models.SetField(folder)
		}
	}
	if v := c.Query("visibility"); v != "" {
		vis := models.Visibility(v)
		f.Visibility = &vis
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	return f
}

func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
