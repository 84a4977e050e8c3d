package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"volleyball-live-system/middleware"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
)

type ReportOperations interface {
	Archive(ctx context.Context, matchID string) (*models.MatchReport, error)
	Latest(ctx context.Context, matchID string) (*models.MatchReport, error)
}

type StatisticsProvider interface {
	Current(ctx context.Context) (*services.Statistics, error)
}

func SetupReportRoutes(app fiber.Router, reports ReportOperations) {
	app.Get("/matches/:id/report", func(c *fiber.Ctx) error {
		id := c.Params("id")
		report, err := reports.Latest(c.UserContext(), id)
		if err != nil {
			return respondError(c, "latest_report", id, err)
		}
		return c.JSON(report)
	})

	app.Post("/matches/:id/report", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		id := c.Params("id")
		report, err := reports.Archive(c.UserContext(), id)
		if err != nil {
			return respondError(c, "archive_report", id, err)
		}
		return c.JSON(report)
	})
}

func SetupStatisticsRoutes(app fiber.Router, stats StatisticsProvider) {
	app.Get("/statistics", func(c *fiber.Ctx) error {
		s, err := stats.Current(c.UserContext())
		if err != nil {
			return respondError(c, "statistics", "", err)
		}
		return c.JSON(s)
	})
}
