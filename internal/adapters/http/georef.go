package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/georef"
)

// Stateless engine endpoints. Nothing here touches storage; every request
// carries the transform or the pairs it needs.

type estimateRequest struct {
	Pairs []domain.CorrespondencePair `json:"pairs"`
	Page  *domain.Rectangle           `json:"page,omitempty"`
}

type estimateResponse struct {
	Transform domain.AffineTransform `json:"transform"`
	FitError  float64                `json:"fit_error_m"`
	Bounds    *domain.GeoBounds      `json:"bounds,omitempty"`
}

type transformRequest struct {
	Transform domain.AffineTransform `json:"transform"`
	Points    []domain.SourcePoint   `json:"points"`
}

type invertRequest struct {
	Transform domain.AffineTransform `json:"transform"`
	Points    []domain.GeoPoint      `json:"points"`
}

type boundsRequest struct {
	Transform domain.AffineTransform `json:"transform"`
	Page      domain.Rectangle       `json:"page"`
}

type accuracyRequest struct {
	Transform domain.AffineTransform `json:"transform"`
	Sources   []domain.SourcePoint   `json:"sources"`
	Targets   []domain.GeoPoint      `json:"targets"`
}

type recenterRequest struct {
	Bounds domain.GeoBounds `json:"bounds"`
	Center domain.GeoPoint  `json:"center"`
}

// maxBatchPoints bounds the points accepted by transform and invert.
const maxBatchPoints = 10000

// EstimateHandler fits a transform. ?method=least_squares accepts three or
// more pairs; the default requires exactly three.
func EstimateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req estimateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Pairs) > maxBatchPoints {
			return errBadRequest(c, "too many pairs")
		}

		src, dst := domain.SplitPairs(req.Pairs)
		var (
			t   domain.AffineTransform
			err error
		)
		switch c.Query("method", "exact") {
		case "exact":
			t, err = georef.EstimateTransform(src, dst)
		case "least_squares":
			t, err = georef.EstimateLeastSquares(src, dst)
		default:
			return errBadRequest(c, "method must be exact or least_squares")
		}
		if err != nil {
			return errFromDomain(c, err)
		}

		fit, err := georef.ValidateAccuracy(src, dst, t)
		if err != nil {
			return errFromDomain(c, err)
		}
		resp := estimateResponse{Transform: t, FitError: fit}
		if req.Page != nil {
			if err := georef.ValidateRectangle(*req.Page); err != nil {
				return errFromDomain(c, err)
			}
			b := georef.TransformRectToBounds(*req.Page, t)
			resp.Bounds = &b
		}
		return c.JSON(resp)
	}
}

// TransformHandler maps page positions to geographic locations.
func TransformHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req transformRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) > maxBatchPoints {
			return errBadRequest(c, "too many points")
		}

		out := make([]domain.GeoPoint, len(req.Points))
		for i, p := range req.Points {
			out[i] = georef.TransformPoint(p, req.Transform)
		}
		return c.JSON(fiber.Map{"points": out})
	}
}

// InvertHandler maps geographic locations back onto the page.
func InvertHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req invertRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) > maxBatchPoints {
			return errBadRequest(c, "too many points")
		}

		out := make([]domain.SourcePoint, len(req.Points))
		for i, g := range req.Points {
			p, err := georef.InvertPoint(g, req.Transform)
			if err != nil {
				return errFromDomain(c, err)
			}
			out[i] = p
		}
		return c.JSON(fiber.Map{"points": out})
	}
}

// BoundsHandler returns the geographic bounds of a transformed page.
func BoundsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req boundsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := georef.ValidateRectangle(req.Page); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(georef.TransformRectToBounds(req.Page, req.Transform))
	}
}

// AccuracyHandler measures a transform against known correspondences.
func AccuracyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req accuracyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		report, err := georef.Accuracy(req.Sources, req.Targets, req.Transform)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(report)
	}
}

// RecenterHandler moves bounds onto a new center, keeping their spans.
func RecenterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recenterRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := georef.ValidateBounds(req.Bounds); err != nil {
			return errFromDomain(c, err)
		}
		if err := georef.ValidateGeoPoint(req.Center); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(georef.RecenterBounds(req.Bounds, req.Center))
	}
}

// DistanceHandler returns the great-circle distance between two points.
func DistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, okA := queryGeoPoint(c, "lat1", "lng1")
		b, okB := queryGeoPoint(c, "lat2", "lng2")
		if !okA || !okB {
			return errBadRequest(c, "lat1, lng1, lat2 and lng2 are required")
		}
		for _, p := range []domain.GeoPoint{a, b} {
			if err := georef.ValidateGeoPoint(p); err != nil {
				return errFromDomain(c, err)
			}
		}

		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.JSON(fiber.Map{"meters": georef.GreatCircleDistance(a, b)})
	}
}
