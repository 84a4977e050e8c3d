package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"volleyball-live-system/middleware"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
)

type WeatherOperations interface {
	Record(ctx context.Context, matchID string, in services.WeatherInput) (*models.Weather, error)
	List(ctx context.Context, matchID string) ([]models.Weather, error)
}

func SetupWeatherRoutes(app fiber.Router, weather WeatherOperations) {
	app.Get("/matches/:id/weather", func(c *fiber.Ctx) error {
		id := c.Params("id")
		rows, err := weather.List(c.UserContext(), id)
		if err != nil {
			return respondError(c, "list_weather", id, err)
		}
		return c.JSON(fiber.Map{"data": rows})
	})

	app.Post("/matches/:id/weather", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		id := c.Params("id")
		var in services.WeatherInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		row, err := weather.Record(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, "record_weather", id, err,
				zap.Float64("temperature", in.Temperature), zap.String("condition", in.Condition))
		}
		return c.Status(fiber.StatusCreated).JSON(row)
	})
}
