package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"volleyball-live-system/middleware"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
)

type RosterOperations interface {
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, idOrSlug string) (*models.Team, error)
	CreatePlayer(ctx context.Context, in services.CreatePlayerInput) (*models.Player, error)
	ListPlayers(ctx context.Context, teamID, query string) ([]models.Player, error)

	UpdateTeam(ctx context.Context, id, name string) (*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	UpdatePlayer(ctx context.Context, id string, in services.UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	RemovePlayer(ctx context.Context, teamID, playerID string) error
}

func SetupRosterRoutes(app fiber.Router, roster RosterOperations) {
	write := middleware.RequireCaller()

	app.Get("/teams", func(c *fiber.Ctx) error {
		teams, err := roster.ListTeams(c.UserContext())
		if err != nil {
			return respondError(c, "list_teams", "", err)
		}
		return c.JSON(fiber.Map{"data": teams})
	})

	app.Get("/teams/:id", func(c *fiber.Ctx) error {
		team, err := roster.GetTeam(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, "get_team", "", err, zap.String("team", c.Params("id")))
		}
		return c.JSON(team)
	})

	app.Post("/teams", write, func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		team, err := roster.CreateTeam(c.UserContext(), req.Name)
		if err != nil {
			return respondError(c, "create_team", "", err, zap.String("name", req.Name))
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	})

	updateTeam := func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		team, err := roster.UpdateTeam(c.UserContext(), c.Params("id"), req.Name)
		if err != nil {
			return respondError(c, "update_team", "", err, zap.String("team_id", c.Params("id")))
		}
		return c.JSON(team)
	}
	app.Put("/teams/:id", write, updateTeam)
	app.Patch("/teams/:id", write, updateTeam)

	app.Delete("/teams/:id", write, func(c *fiber.Ctx) error {
		if err := roster.DeleteTeam(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, "delete_team", "", err, zap.String("team_id", c.Params("id")))
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Delete("/teams/:id/players/:player_id", write, func(c *fiber.Ctx) error {
		err := roster.RemovePlayer(c.UserContext(), c.Params("id"), c.Params("player_id"))
		if err != nil {
			return respondError(c, "remove_player", "", err,
				zap.String("team_id", c.Params("id")), zap.String("player_id", c.Params("player_id")))
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/players", func(c *fiber.Ctx) error {
		players, err := roster.ListPlayers(c.UserContext(), c.Query("team_id"), c.Query("q"))
		if err != nil {
			return respondError(c, "list_players", "", err, zap.String("team_id", c.Query("team_id")))
		}
		return c.JSON(fiber.Map{"data": players})
	})

	app.Post("/players", write, func(c *fiber.Ctx) error {
		var in services.CreatePlayerInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		player, err := roster.CreatePlayer(c.UserContext(), in)
		if err != nil {
			return respondError(c, "create_player", "", err,
				zap.String("team_id", in.TeamID), zap.String("name", in.Name))
		}
		return c.Status(fiber.StatusCreated).JSON(player)
	})

	updatePlayer := func(c *fiber.Ctx) error {
		var in services.UpdatePlayerInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		player, err := roster.UpdatePlayer(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, "update_player", "", err, zap.String("player_id", c.Params("id")))
		}
		return c.JSON(player)
	}
	app.Put("/players/:id", write, updatePlayer)
	app.Patch("/players/:id", write, updatePlayer)

	app.Delete("/players/:id", write, func(c *fiber.Ctx) error {
		if err := roster.DeletePlayer(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, "delete_player", "", err, zap.String("player_id", c.Params("id")))
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
