package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"volleyball-live-system/apperr"
	"volleyball-live-system/models"
)

// RosterService owns teams and players. The match services only read it.
type RosterService struct {
	DB *gorm.DB

	notifier ChangeNotifier
}

type RosterServiceOption func(*RosterService)

// WithRosterNotifier reports committed roster writes, so team counts and
// player names in cached statistics follow them.
func WithRosterNotifier(n ChangeNotifier) RosterServiceOption {
	return func(s *RosterService) { s.notifier = n }
}

func NewRosterService(db *gorm.DB, opts ...RosterServiceOption) *RosterService {
	s := &RosterService{DB: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RosterService) changed() {
	if s.notifier != nil {
		s.notifier.MarkDirty()
	}
}

func searchName(name string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(name)))
}

func (s *RosterService) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("team name is required")
	}
	team := &models.Team{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug.Make(name),
	}
	if err := s.DB.WithContext(ctx).Create(team).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("team %q already exists", name)
		}
		return nil, apperr.Internal(err, "failed to create team")
	}
	s.changed()
	return team, nil
}

func (s *RosterService) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&teams).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list teams")
	}
	return teams, nil
}

// GetTeam accepts either the team id or its slug.
func (s *RosterService) GetTeam(ctx context.Context, idOrSlug string) (*models.Team, error) {
	q := s.DB.WithContext(ctx).Preload("Players", func(db *gorm.DB) *gorm.DB {
		return db.Order("jersey_number ASC")
	})
	if _, err := uuid.Parse(idOrSlug); err == nil {
		q = q.Where("id = ?", idOrSlug)
	} else {
		q = q.Where("slug = ?", idOrSlug)
	}

	var team models.Team
	err := q.First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("team %s not found", idOrSlug)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load team")
	}
	return &team, nil
}

type CreatePlayerInput struct {
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	JerseyNumber int    `json:"jersey_number"`
	Position     string `json:"position"`
	AvatarURL    string `json:"avatar_url"`
}

func validPosition(p string) bool {
	for _, pos := range models.Positions {
		if p == pos {
			return true
		}
	}
	return false
}

func (s *RosterService) CreatePlayer(ctx context.Context, in CreatePlayerInput) (*models.Player, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.ToUpper(strings.TrimSpace(in.Position))
	switch {
	case in.Name == "":
		return nil, apperr.Validation("player name is required")
	case !validPosition(in.Position):
		return nil, apperr.Validation("position must be one of %s", strings.Join(models.Positions, ", "))
	case in.JerseyNumber < 0 || in.JerseyNumber > 99:
		return nil, apperr.Validation("jersey_number must be between 0 and 99")
	}
	if err := parseID("team", in.TeamID); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Team{}).Where("id = ?", in.TeamID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "failed to look up team")
	}
	if count == 0 {
		return nil, apperr.NotFound("team %s not found", in.TeamID)
	}

	if in.AvatarURL == "" {
		in.AvatarURL = models.DefaultAvatarURL
	}
	player := &models.Player{
		ID:           uuid.NewString(),
		TeamID:       in.TeamID,
		Name:         in.Name,
		SearchName:   searchName(in.Name),
		JerseyNumber: in.JerseyNumber,
		Position:     in.Position,
		AvatarURL:    in.AvatarURL,
	}
	if err := db.Create(player).Error; err != nil {
		return nil, apperr.Internal(err, "failed to create player")
	}
	s.changed()
	return player, nil
}

// ListPlayers filters by team and by an accent-insensitive name fragment.
func (s *RosterService) ListPlayers(ctx context.Context, teamID, query string) ([]models.Player, error) {
	q := s.DB.WithContext(ctx).Model(&models.Player{})
	if teamID != "" {
		if err := parseID("team", teamID); err != nil {
			return nil, err
		}
		q = q.Where("team_id = ?", teamID)
	}
	if query = searchName(query); query != "" {
		q = q.Where("search_name LIKE ?", "%"+query+"%")
	}

	var players []models.Player
	if err := q.Order("name ASC").Find(&players).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list players")
	}
	return players, nil
}

// RemoteTeam and RemotePlayer are roster rows mirrored from the external
// roster service, keyed by its ids.
type RemoteTeam struct {
	ExternalID string    `json:"id"`
	Name       string    `json:"name"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type RemotePlayer struct {
	ExternalID     string    `json:"id"`
	TeamExternalID string    `json:"team_id"`
	Name           string    `json:"name"`
	JerseyNumber   int       `json:"jersey_number"`
	Position       string    `json:"position"`
	AvatarURL      string    `json:"avatar_url"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpsertTeams mirrors remote teams in one statement.
func (s *RosterService) UpsertTeams(ctx context.Context, remote []RemoteTeam) (int, error) {
	if len(remote) == 0 {
		return 0, nil
	}
	teams := make([]models.Team, 0, len(remote))
	for _, rt := range remote {
		externalID := rt.ExternalID
		team := models.Team{
			ID:         uuid.NewString(),
			ExternalID: &externalID,
			Name:       strings.TrimSpace(rt.Name),
			Slug:       slug.Make(rt.Name),
		}
		if !rt.UpdatedAt.IsZero() {
			team.UpdatedAt = rt.UpdatedAt
		}
		teams = append(teams, team)
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "updated_at"}),
	}).Create(&teams).Error
	if err != nil {
		return 0, fmt.Errorf("upsert %d team(s): %w", len(teams), err)
	}
	s.changed()
	return len(teams), nil
}

// UpsertPlayers mirrors remote players. Players whose team has not been
// mirrored yet are skipped and counted.
func (s *RosterService) UpsertPlayers(ctx context.Context, remote []RemotePlayer) (upserted, skipped int, err error) {
	if len(remote) == 0 {
		return 0, 0, nil
	}
	db := s.DB.WithContext(ctx)

	externalTeamIDs := make([]string, 0, len(remote))
	for _, rp := range remote {
		externalTeamIDs = append(externalTeamIDs, rp.TeamExternalID)
	}
	var teams []models.Team
	if err := db.Where("external_id IN ?", externalTeamIDs).Find(&teams).Error; err != nil {
		return 0, 0, fmt.Errorf("resolve teams: %w", err)
	}
	teamIDs := make(map[string]string, len(teams))
	for _, t := range teams {
		teamIDs[*t.ExternalID] = t.ID
	}

	players := make([]models.Player, 0, len(remote))
	for _, rp := range remote {
		teamID, ok := teamIDs[rp.TeamExternalID]
		position := strings.ToUpper(rp.Position)
		if !ok || !validPosition(position) {
			skipped++
			continue
		}
		externalID := rp.ExternalID
		avatar := rp.AvatarURL
		if avatar == "" {
			avatar = models.DefaultAvatarURL
		}
		player := models.Player{
			ID:           uuid.NewString(),
			ExternalID:   &externalID,
			TeamID:       teamID,
			Name:         rp.Name,
			SearchName:   searchName(rp.Name),
			JerseyNumber: rp.JerseyNumber,
			Position:     position,
			AvatarURL:    avatar,
		}
		if !rp.UpdatedAt.IsZero() {
			player.UpdatedAt = rp.UpdatedAt
		}
		players = append(players, player)
	}
	if len(players) == 0 {
		return 0, skipped, nil
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"team_id", "name", "search_name", "jersey_number", "position", "avatar_url", "updated_at",
		}),
	}).Create(&players).Error
	if err != nil {
		return 0, skipped, fmt.Errorf("upsert %d player(s): %w", len(players), err)
	}
	s.changed()
	return len(players), skipped, nil
}

// LastSyncedAt is the newest update time among mirrored rows, or the zero
// time when nothing has been mirrored.
func (s *RosterService) LastSyncedAt(ctx context.Context) (time.Time, error) {
	var last sql.NullTime
	err := s.DB.WithContext(ctx).Raw(`SELECT MAX(updated_at) FROM (
		SELECT updated_at FROM teams WHERE external_id IS NOT NULL AND deleted_at IS NULL
		UNION ALL
		SELECT updated_at FROM players WHERE external_id IS NOT NULL AND deleted_at IS NULL
	) mirrored`).Row().Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("read last sync time: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}
