package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

type createAlignmentRequest struct {
	Name  string                      `json:"name"`
	Page  domain.Rectangle            `json:"page"`
	Pairs []domain.CorrespondencePair `json:"pairs"`
}

type pairsRequest struct {
	Pairs []domain.CorrespondencePair `json:"pairs"`
}

type opacityRequest struct {
	Opacity *float64 `json:"opacity"`
}

// ListAlignmentsHandler returns all alignments, paginated.
func ListAlignmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alignments, err := deps.Alignments.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(alignments)
		if offset >= total {
			alignments = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			alignments = alignments[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: alignments, Pagination: pg})
	}
}

// CreateAlignmentHandler estimates a transform from three reference pairs
// and places a new overlay.
func CreateAlignmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createAlignmentRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Name) > 200 {
			return errBadRequest(c, "name too long (max 200 characters)")
		}

		a, err := deps.Alignments.Create(c.UserContext(), req.Name, req.Page, req.Pairs)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Location("/v1/alignments/" + a.ID)
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// GetAlignmentHandler returns a single alignment by ID.
func GetAlignmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := deps.Alignments.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(a)
	}
}

// DeleteAlignmentHandler removes an alignment and its page image.
func DeleteAlignmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Alignments.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		if deps.PageImages != nil {
			_ = deps.PageImages.Evict(c.UserContext(), id)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UpdatePairsHandler replaces the reference pairs and re-estimates the transform.
func UpdatePairsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pairsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		a, err := deps.Alignments.UpdatePairs(c.UserContext(), c.Params("id"), req.Pairs)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(a)
	}
}

// MoveOverlayHandler recenters the overlay on the posted point.
func MoveOverlayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var center domain.GeoPoint
		if err := c.BodyParser(&center); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		a, err := deps.Alignments.Move(c.UserContext(), c.Params("id"), center)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(a.Placement)
	}
}

// SetOpacityHandler changes the overlay opacity.
func SetOpacityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req opacityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Opacity == nil {
			return errBadRequest(c, "opacity is required")
		}

		a, err := deps.Alignments.SetOpacity(c.UserContext(), c.Params("id"), *req.Opacity)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(a.Placement)
	}
}

// AlignmentAccuracyHandler reports the transform error over the stored pairs
// and any held-out pairs in the body.
func AlignmentAccuracyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pairsRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		report, err := deps.Alignments.Accuracy(c.UserContext(), c.Params("id"), req.Pairs)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(report)
	}
}

// ProjectHandler maps a page position (?x=&y=) to a geographic location.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("x") == "" || c.Query("y") == "" {
			return errBadRequest(c, "x and y are required")
		}
		p := domain.SourcePoint{X: c.QueryFloat("x"), Y: c.QueryFloat("y")}

		g, err := deps.Alignments.Project(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(g)
	}
}

// UnprojectHandler maps a geographic location (?lat=&lng=) onto the page.
func UnprojectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g, ok := queryGeoPoint(c, "lat", "lng")
		if !ok {
			return errBadRequest(c, "lat and lng are required")
		}

		p, err := deps.Alignments.Unproject(c.UserContext(), c.Params("id"), g)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

// FootprintHandler returns the overlay geometry as GeoJSON.
func FootprintHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Alignments.Footprint(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, "encode footprint")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// PutPageImageHandler stores the rasterized page. The body is the raw image.
func PutPageImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.PageImages == nil {
			return errUnavailable(c, "page image cache not configured")
		}
		img := domain.PageImage{
			ContentType: c.Get(fiber.HeaderContentType),
			// Body is only valid for the lifetime of the handler.
			Data: append([]byte(nil), c.Body()...),
		}
		if err := deps.PageImages.Put(c.UserContext(), c.Params("id"), img); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetPageImageHandler returns the cached page image.
func GetPageImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.PageImages == nil {
			return errUnavailable(c, "page image cache not configured")
		}
		img, err := deps.PageImages.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, img.ContentType)
		c.Set(fiber.HeaderCacheControl, "private, max-age=300")
		return c.Send(img.Data)
	}
}

// ContainingHandler lists overlays covering (or within ?radius= meters of) a point.
func ContainingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g, ok := queryGeoPoint(c, "lat", "lng")
		if !ok {
			return errBadRequest(c, "lat and lng are required")
		}
		radius := c.QueryFloat("radius", 0)
		if radius < 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 0 and 50000 meters")
		}
		limit := c.QueryInt("limit", 20)

		hits, err := deps.Alignments.Containing(c.UserContext(), g, radius, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(hits)
	}
}

// queryGeoPoint reads a coordinate pair from the query string.
func queryGeoPoint(c *fiber.Ctx, latKey, lngKey string) (domain.GeoPoint, bool) {
	if c.Query(latKey) == "" || c.Query(lngKey) == "" {
		return domain.GeoPoint{}, false
	}
	return domain.GeoPoint{Lat: c.QueryFloat(latKey), Lng: c.QueryFloat(lngKey)}, true
}
