package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"volleyball-live-system/apperr"
	"volleyball-live-system/models"
)

func (s *RosterService) findTeam(db *gorm.DB, id string) (*models.Team, error) {
	if err := parseID("team", id); err != nil {
		return nil, err
	}
	var team models.Team
	err := db.Where("id = ?", id).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("team %s not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load team")
	}
	return &team, nil
}

// UpdateTeam renames a team; the slug follows the name.
func (s *RosterService) UpdateTeam(ctx context.Context, id, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("team name is required")
	}
	db := s.DB.WithContext(ctx)
	team, err := s.findTeam(db, id)
	if err != nil {
		return nil, err
	}

	err = db.Model(team).Updates(map[string]interface{}{"name": name, "slug": slug.Make(name)}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("team %q already exists", name)
		}
		return nil, apperr.Internal(err, "failed to update team")
	}
	s.changed()
	return s.GetTeam(ctx, id)
}

// DeleteTeam soft-deletes a team and its players. Teams that still appear
// in a match cannot be deleted; the match owns their ledger.
func (s *RosterService) DeleteTeam(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := s.findTeam(tx, id)
		if err != nil {
			return err
		}

		var matches int64
		if err := tx.Model(&models.Match{}).
			Where("home_team_id = ? OR away_team_id = ?", team.ID, team.ID).
			Count(&matches).Error; err != nil {
			return fmt.Errorf("count team matches: %w", err)
		}
		if matches > 0 {
			return apperr.InvalidState("team %q still plays in %d match(es), delete them first", team.Name, matches).
				WithDetails(map[string]interface{}{"matches": matches})
		}

		if err := tx.Where("team_id = ?", team.ID).Delete(&models.Player{}).Error; err != nil {
			return fmt.Errorf("delete team players: %w", err)
		}
		if err := tx.Delete(team).Error; err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Internal(err, "failed to delete team")
	}
	s.changed()
	return nil
}

// UpdatePlayerInput edits a player. Nil fields are left alone.
type UpdatePlayerInput struct {
	TeamID       *string `json:"team_id"`
	Name         *string `json:"name"`
	JerseyNumber *int    `json:"jersey_number"`
	Position     *string `json:"position"`
	AvatarURL    *string `json:"avatar_url"`
}

func (s *RosterService) UpdatePlayer(ctx context.Context, id string, in UpdatePlayerInput) (*models.Player, error) {
	if err := parseID("player", id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("player name is required")
		}
		updates["name"] = name
		updates["search_name"] = searchName(name)
	}
	if in.Position != nil {
		position := strings.ToUpper(strings.TrimSpace(*in.Position))
		if !validPosition(position) {
			return nil, apperr.Validation("position must be one of %s", strings.Join(models.Positions, ", "))
		}
		updates["position"] = position
	}
	if in.JerseyNumber != nil {
		if *in.JerseyNumber < 0 || *in.JerseyNumber > 99 {
			return nil, apperr.Validation("jersey_number must be between 0 and 99")
		}
		updates["jersey_number"] = *in.JerseyNumber
	}
	if in.AvatarURL != nil {
		avatar := strings.TrimSpace(*in.AvatarURL)
		if avatar == "" {
			avatar = models.DefaultAvatarURL
		}
		updates["avatar_url"] = avatar
	}

	db := s.DB.WithContext(ctx)
	if in.TeamID != nil {
		if _, err := s.findTeam(db, *in.TeamID); err != nil {
			return nil, err
		}
		updates["team_id"] = *in.TeamID
	}

	var player models.Player
	err := db.Where("id = ?", id).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("player %s not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load player")
	}
	if len(updates) == 0 {
		return &player, nil
	}

	if err := db.Model(&player).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err, "failed to update player")
	}
	s.changed()

	var updated models.Player
	if err := db.Where("id = ?", id).First(&updated).Error; err != nil {
		return nil, apperr.Internal(err, "failed to reload player")
	}
	return &updated, nil
}

// DeletePlayer soft-deletes a player. Their recorded performances stay in
// the match history.
func (s *RosterService) DeletePlayer(ctx context.Context, id string) error {
	return s.deletePlayer(ctx, id, "")
}

// RemovePlayer deletes a player only when they belong to teamID.
func (s *RosterService) RemovePlayer(ctx context.Context, teamID, playerID string) error {
	if err := parseID("team", teamID); err != nil {
		return err
	}
	return s.deletePlayer(ctx, playerID, teamID)
}

func (s *RosterService) deletePlayer(ctx context.Context, id, teamID string) error {
	if err := parseID("player", id); err != nil {
		return err
	}
	q := s.DB.WithContext(ctx).Where("id = ?", id)
	if teamID != "" {
		q = q.Where("team_id = ?", teamID)
	}
	res := q.Delete(&models.Player{})
	if res.Error != nil {
		return apperr.Internal(res.Error, "failed to delete player")
	}
	if res.RowsAffected == 0 {
		if teamID != "" {
			return apperr.NotFound("player %s not found in team %s", id, teamID)
		}
		return apperr.NotFound("player %s not found", id)
	}
	s.changed()
	return nil
}
