package httpapi

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
	"github.com/DannySS123/weather-pulse-explorer/internal/geo"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *astro.Service) {
	v1 := app.Group("/api/v1")

	v1.Post("/observations", func(c *fiber.Ctx) error {
		var req acquireRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		from, to, err := req.dates()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		progress := func(completed, total int) {
			log.Printf("acquisition for %s: %d/%d dates settled", req.Place, completed, total)
		}

		report, err := service.AcquireRange(c.Context(), req.Place, from, to, progress)
		if err != nil {
			if errors.Is(err, geo.ErrPlaceNotFound) {
				return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("could not resolve place %q", req.Place))
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		resp := fiber.Map{"report": report}
		if report.SucceededDates == 0 {
			resp["warning"] = "no data could be acquired for any requested date"
		}
		return c.JSON(resp)
	})

	v1.Get("/observations", func(c *fiber.Ctx) error {
		f, err := parseFilterQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := service.Records(c.Context(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read records")
		}

		return c.JSON(fiber.Map{
			"count":   len(records),
			"records": records,
		})
	})

	v1.Get("/statistics", func(c *fiber.Ctx) error {
		f, err := parseFilterQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stats, err := service.Statistics(c.Context(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute statistics")
		}

		return c.JSON(stats)
	})
}

// acquireRequest is the body of POST /observations. Dates use the
// YYYY-MM-DD form; a missing "to" acquires a single date.
type acquireRequest struct {
	Place string `json:"place" validate:"required"`
	From  string `json:"from" validate:"required"`
	To    string `json:"to"`
}

func (r acquireRequest) dates() (time.Time, time.Time, error) {
	from, err := parseDate(r.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	to := from
	if r.To != "" {
		to, err = parseDate(r.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	return from, to, nil
}

// parseFilterQuery reads the optional location/from/to query
// parameters shared by the record and statistics endpoints.
func parseFilterQuery(c *fiber.Ctx) (astro.Filter, error) {
	var f astro.Filter
	f.Location = c.Query("location")

	if s := c.Query("from"); s != "" {
		from, err := parseDate(s)
		if err != nil {
			return f, err
		}
		f.From = from
	}
	if s := c.Query("to"); s != "" {
		to, err := parseDate(s)
		if err != nil {
			return f, err
		}
		f.To = to
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, errors.New("to must not be before from")
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; use YYYY-MM-DD", s)
	}
	return d.UTC(), nil
}
