package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"agrigeo/internal/geodata"
)

const internalErrorMessage = "Internal server error"

var upstreamErrorMessages = map[string]string{
	"soil":       "Failed to fetch soil data",
	"facilities": "Failed to fetch facilities",
}

func soilHandler(svc *geodata.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logReq := reqLogger(c)

		q, err := geodata.ParseSoilQuery(c.Query("lat"), lngParam(c))
		if err != nil {
			return respondError(c, logReq, err)
		}

		start := time.Now()
		res, err := svc.Soil(c.UserContext(), q)
		if err != nil {
			return respondError(c, logReq, err)
		}

		logReq("[agrigeo] soil key=%s in %s", q.Key(), time.Since(start))
		return c.JSON(res)
	}
}

func facilitiesHandler(svc *geodata.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logReq := reqLogger(c)

		q, err := svc.ParseFacilitiesQuery(c.Query("lat"), lngParam(c), c.Query("radiusKm"))
		if err != nil {
			return respondError(c, logReq, err)
		}

		start := time.Now()
		res, err := svc.Facilities(c.UserContext(), q)
		if err != nil {
			return respondError(c, logReq, err)
		}

		logReq("[agrigeo] facilities key=%s count=%d in %s", q.Key(), len(res.Facilities), time.Since(start))
		return c.JSON(res)
	}
}

// siteHandler answers soil and facilities for one land listing in a single call.
func siteHandler(svc *geodata.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logReq := reqLogger(c)

		q, err := svc.ParseFacilitiesQuery(c.Query("lat"), lngParam(c), c.Query("radiusKm"))
		if err != nil {
			return respondError(c, logReq, err)
		}

		start := time.Now()
		site, err := svc.Site(c.UserContext(), q)
		if err != nil {
			return respondError(c, logReq, err)
		}

		logReq("[agrigeo] site key=%s in %s", q.Key(), time.Since(start))
		return c.JSON(site)
	}
}

// lngParam accepts both "lng" and "lon"; "lng" wins when both are present.
func lngParam(c *fiber.Ctx) string {
	if v := c.Query("lng"); v != "" {
		return v
	}
	return c.Query("lon")
}

// respondError maps lookup failures to 400 (input), 502 (upstream) or 500 (anything else).
func respondError(c *fiber.Ctx, logReq func(string, ...any), err error) error {
	if geodata.IsClientError(err) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var ue *geodata.UpstreamError
	if errors.As(err, &ue) {
		logReq("[agrigeo][upstream] %s %s failed: %v", c.Method(), c.Path(), err)
		msg, ok := upstreamErrorMessages[ue.Provider]
		if !ok {
			msg = "Upstream fetch failed"
		}
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": msg})
	}

	logReq("[agrigeo] %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": internalErrorMessage})
}
