package server

import (
	"strconv"
	"strings"
	"unicode"

	"linkup/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxPageLimit = 100

// Pagination holds parsed limit/offset query values.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset query params with sane defaults.
// Invalid or out-of-range values fall back to the defaults instead of erroring.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts and validates a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam turns a route param name like "userId" into "user ID" for
// error messages.
func humanizeParam(param string) string {
	words := splitCamel(param)
	for i, w := range words {
		if strings.EqualFold(w, "id") {
			words[i] = "ID"
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// currentUserID reads the authenticated user ID stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}
