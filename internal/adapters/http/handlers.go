package http

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/core/usecases"
	"github.com/samirrijal/pokedex/internal/pkg/logging"
)

const statusSaved = "saved-successfully"

// IndexHandler greets clients.
func IndexHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"hooray":  "welcome to the pokedex api!",
			"version": Version,
		})
	}
}

// PushMapObjectHandler upserts a single map object for the authorized user.
func PushMapObjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p mapObjectPayload
		if err := json.Unmarshal(c.Body(), &p); err != nil {
			return errBadRequest(c, codeBadJSON, "invalid map object: "+err.Error())
		}

		obj, err := deps.MapObjects.Push(c.UserContext(), p.toInput(), currentUser(c))
		if err != nil {
			logging.FromContext(c.UserContext()).Warn("push map object failed", "uid", p.UID, "error", err)
			return errDB(c, err)
		}

		return c.JSON(fiber.Map{
			"status":    statusSaved,
			"mapobject": obj,
		})
	}
}

// PushMapObjectBulkHandler dispatches a batch of upserts in the background
// and replies immediately. Per-item failures are only logged.
func PushMapObjectBulkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var raw []json.RawMessage
		if err := json.Unmarshal(c.Body(), &raw); err != nil {
			return errBadRequest(c, codeNoData, "requires an array of map objects to be posted")
		}

		items := make([]domain.MapObjectInput, 0, len(raw))
		for _, r := range raw {
			items = append(items, decodeMapObject(r))
		}

		deps.MapObjects.PushBulk(c.UserContext(), items, currentUser(c))
		return c.JSON(fiber.Map{"status": statusSaved})
	}
}

// BBoxHandler returns the visible map objects inside a bounding box as GeoJSON.
// Form fields: bbox ("minLon,minLat,maxLon,maxLat"), zoom.
func BBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")

		q, err := parseBBoxQuery(c.FormValue("bbox"), c.FormValue("zoom"))
		if err != nil && !q.Gated() {
			return errBadRequest(c, codeBBox, err.Error())
		}

		fc, err := deps.MapObjects.FindInBounds(c.UserContext(), q)
		if err != nil {
			logging.FromContext(c.UserContext()).Error("bbox query failed", "error", err)
			return errDB(c, err)
		}

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(fc)
	}
}

// parseBBoxQuery builds a query from raw form values. A zoom that does not
// parse is ignored. The zoom is kept even when the bbox is malformed, so a
// gated query can still be answered.
func parseBBoxQuery(bbox, zoom string) (usecases.BBoxQuery, error) {
	q := usecases.BBoxQuery{Zoom: parseLeadingInt(zoom)}
	b, err := domain.ParseBounds(bbox)
	if err != nil {
		return q, err
	}
	q.Bounds = b
	return q, nil
}

// parseLeadingInt parses the integer prefix of s ("12.5" and "12abc" give 12).
// It returns nil when s has no integer prefix.
func parseLeadingInt(s string) *int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}
