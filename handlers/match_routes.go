package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"volleyball-live-system/middleware"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
)

// MatchOperations is the match surface served over HTTP. *services.MatchService
// implements it.
//
//go:generate mockgen -source=match_routes.go -destination=../mocks/match_operations.go -package=mocks -mock_names=MatchOperations=MockMatchOperations
type MatchOperations interface {
	CreateMatch(ctx context.Context, in services.CreateMatchInput) (*models.Match, error)
	ListMatches(ctx context.Context, f services.MatchFilter) ([]models.Match, int64, error)
	GetMatch(ctx context.Context, id string) (*services.MatchDetail, error)
	ListPointEvents(ctx context.Context, matchID string, setNumber int) ([]models.PointEvent, error)
	ListPerformances(ctx context.Context, matchID string, setNumber int) ([]models.PlayerPerformance, error)
	UpdateMatch(ctx context.Context, matchID string, in services.UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, matchID string) error

	StartMatch(ctx context.Context, matchID string) (*services.StartMatchResult, error)
	EndMatch(ctx context.Context, matchID string) (*services.EndMatchResult, error)
	SuspendMatch(ctx context.Context, matchID string) error
	RescheduleMatch(ctx context.Context, matchID string, newDate time.Time) (time.Time, error)

	StartSet(ctx context.Context, matchID string) (*services.StartSetResult, error)
	EndSet(ctx context.Context, matchID string) (*services.EndSetResult, error)
	RecordTimeout(ctx context.Context, matchID string, team string) (*services.TimeoutResult, error)
	RecordPoint(ctx context.Context, matchID string, in services.RecordPointInput) (*services.RecordPointResult, error)
}

type matchHandler struct {
	ops MatchOperations
}

func SetupMatchRoutes(app fiber.Router, ops MatchOperations) {
	h := &matchHandler{ops: ops}
	write := middleware.RequireCaller()

	app.Get("/matches", h.list)
	app.Get("/matches/:id", h.get)
	app.Get("/matches/:id/events", h.events)
	app.Get("/matches/:id/performances", h.performances)

	app.Post("/matches", write, h.create)
	app.Put("/matches/:id", write, h.update)
	app.Patch("/matches/:id", write, h.update)
	app.Delete("/matches/:id", write, h.remove)
	app.Post("/matches/:id/start", write, h.start)
	app.Post("/matches/:id/end", write, h.end)
	app.Post("/matches/:id/suspend", write, h.suspend)
	app.Post("/matches/:id/reschedule", write, h.reschedule)
	app.Patch("/matches/:id/score", write, h.score)
	app.Post("/matches/:id/sets/start", write, h.startSet)
	app.Post("/matches/:id/sets/end", write, h.endSet)
	app.Post("/matches/:id/timeouts", write, h.timeout)
}

type createMatchRequest struct {
	HomeTeamID      string   `json:"home_team_id"`
	AwayTeamID      string   `json:"away_team_id"`
	Date            string   `json:"date"`
	Location        string   `json:"location"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	TotalSpectators int      `json:"total_spectators"`
	MatchNotes      string   `json:"match_notes"`
}

func (h *matchHandler) create(c *fiber.Ctx) error {
	var req createMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return respondError(c, "create_match", "", err)
	}

	match, err := h.ops.CreateMatch(c.UserContext(), services.CreateMatchInput{
		HomeTeamID:      req.HomeTeamID,
		AwayTeamID:      req.AwayTeamID,
		Date:            date,
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		TotalSpectators: req.TotalSpectators,
		MatchNotes:      req.MatchNotes,
	})
	if err != nil {
		return respondError(c, "create_match", "", err,
			zap.String("home_team_id", req.HomeTeamID), zap.String("away_team_id", req.AwayTeamID))
	}
	return c.Status(fiber.StatusCreated).JSON(match)
}

func (h *matchHandler) list(c *fiber.Ctx) error {
	f := services.MatchFilter{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	matches, total, err := h.ops.ListMatches(c.UserContext(), f)
	if err != nil {
		return respondError(c, "list_matches", "", err, zap.String("status", f.Status))
	}
	return c.JSON(fiber.Map{
		"data":   matches,
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

func (h *matchHandler) get(c *fiber.Ctx) error {
	id := c.Params("id")
	detail, err := h.ops.GetMatch(c.UserContext(), id)
	if err != nil {
		return respondError(c, "get_match", id, err)
	}
	return c.JSON(detail)
}

func (h *matchHandler) events(c *fiber.Ctx) error {
	id := c.Params("id")
	setNumber := c.QueryInt("set_number", 0)
	events, err := h.ops.ListPointEvents(c.UserContext(), id, setNumber)
	if err != nil {
		return respondError(c, "list_point_events", id, err, zap.Int("set_number", setNumber))
	}
	return c.JSON(fiber.Map{"data": events})
}

func (h *matchHandler) performances(c *fiber.Ctx) error {
	id := c.Params("id")
	setNumber := c.QueryInt("set_number", 0)
	perfs, err := h.ops.ListPerformances(c.UserContext(), id, setNumber)
	if err != nil {
		return respondError(c, "list_performances", id, err, zap.Int("set_number", setNumber))
	}
	return c.JSON(fiber.Map{"data": perfs})
}

type updateMatchRequest struct {
	Date            *string  `json:"date"`
	Location        *string  `json:"location"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	TotalSpectators *int     `json:"total_spectators"`
	MatchNotes      *string  `json:"match_notes"`
}

func (h *matchHandler) update(c *fiber.Ctx) error {
	id := c.Params("id")
	var req updateMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	in := services.UpdateMatchInput{
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		TotalSpectators: req.TotalSpectators,
		MatchNotes:      req.MatchNotes,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return respondError(c, "update_match", id, err)
		}
		in.Date = &date
	}

	match, err := h.ops.UpdateMatch(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, "update_match", id, err)
	}
	return c.JSON(match)
}

func (h *matchHandler) remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.ops.DeleteMatch(c.UserContext(), id); err != nil {
		return respondError(c, "delete_match", id, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *matchHandler) start(c *fiber.Ctx) error {
	id := c.Params("id")
	res, err := h.ops.StartMatch(c.UserContext(), id)
	if err != nil {
		return respondError(c, "start_match", id, err)
	}
	return c.JSON(res)
}

func (h *matchHandler) end(c *fiber.Ctx) error {
	id := c.Params("id")
	res, err := h.ops.EndMatch(c.UserContext(), id)
	if err != nil {
		return respondError(c, "end_match", id, err)
	}
	return c.JSON(res)
}

func (h *matchHandler) suspend(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.ops.SuspendMatch(c.UserContext(), id); err != nil {
		return respondError(c, "suspend_match", id, err)
	}
	return c.JSON(fiber.Map{"message": "match suspended"})
}

func (h *matchHandler) reschedule(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		NewDate string `json:"new_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.NewDate == "" {
		return badRequest(c, "new_date is required")
	}
	newDate, err := parseDate(req.NewDate)
	if err != nil {
		return respondError(c, "reschedule_match", id, err)
	}

	got, err := h.ops.RescheduleMatch(c.UserContext(), id, newDate)
	if err != nil {
		return respondError(c, "reschedule_match", id, err, zap.Time("new_date", newDate))
	}
	return c.JSON(fiber.Map{"new_date": got})
}

func (h *matchHandler) score(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.RecordPointInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.ops.RecordPoint(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, "record_point", id, err,
			zap.Int("set_number", in.SetNumber),
			zap.String("player_id", in.PlayerID),
			zap.String("point_type", in.PointType),
			zap.Bool("undo", in.Undo))
	}
	return c.JSON(res)
}

func (h *matchHandler) startSet(c *fiber.Ctx) error {
	id := c.Params("id")
	res, err := h.ops.StartSet(c.UserContext(), id)
	if err != nil {
		return respondError(c, "start_set", id, err)
	}
	return c.JSON(res)
}

func (h *matchHandler) endSet(c *fiber.Ctx) error {
	id := c.Params("id")
	res, err := h.ops.EndSet(c.UserContext(), id)
	if err != nil {
		return respondError(c, "end_set", id, err)
	}
	return c.JSON(res)
}

func (h *matchHandler) timeout(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		Team string `json:"team"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.ops.RecordTimeout(c.UserContext(), id, req.Team)
	if err != nil {
		return respondError(c, "record_timeout", id, err, zap.String("team", req.Team))
	}
	return c.JSON(res)
}
