package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"volleyball-live-system/apperr"
	"volleyball-live-system/logger"
	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
)

// ObjectStore uploads archived reports and returns their public URL.
//
//go:generate mockgen -source=report_service.go -destination=../mocks/object_store.go -package=mocks -mock_names=ObjectStore=MockObjectStore
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// ReportService archives the summary of finished matches.
type ReportService struct {
	Matches *MatchService
	Store   ObjectStore // nil disables uploads
}

func NewReportService(matches *MatchService, store ObjectStore) *ReportService {
	return &ReportService{Matches: matches, Store: store}
}

type reportTeam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reportSet struct {
	Number      int    `json:"number"`
	HomeScore   int    `json:"home_score"`
	AwayScore   int    `json:"away_score"`
	DurationSec *int64 `json:"duration,omitempty"`
}

// MatchReportPayload is the archived document.
type MatchReportPayload struct {
	MatchID      string        `json:"match_id"`
	HomeTeam     reportTeam    `json:"home_team"`
	AwayTeam     reportTeam    `json:"away_team"`
	Date         time.Time     `json:"date"`
	Location     string        `json:"location,omitempty"`
	StartTime    *time.Time    `json:"start_time"`
	EndTime      *time.Time    `json:"end_time"`
	DurationSec  *int64        `json:"duration"`
	Sets         []reportSet   `json:"sets"`
	SetsWon      scoring.Tally `json:"sets_won"`
	Winner       scoring.Side  `json:"winner,omitempty"`
	WinnerTeamID string        `json:"winner_team_id,omitempty"`
	Players      []PlayerTotal `json:"players"`
}

func buildReport(d *MatchDetail) *MatchReportPayload {
	r := &MatchReportPayload{
		MatchID:     d.ID,
		Date:        d.Date,
		Location:    d.Location,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		DurationSec: d.DurationSec,
		SetsWon:     d.SetsWon,
		Players:     d.PlayerTotals,
		Sets:        make([]reportSet, 0, len(d.Sets)),
	}
	if d.HomeTeam != nil {
		r.HomeTeam = reportTeam{ID: d.HomeTeam.ID, Name: d.HomeTeam.Name}
	}
	if d.AwayTeam != nil {
		r.AwayTeam = reportTeam{ID: d.AwayTeam.ID, Name: d.AwayTeam.Name}
	}
	for _, set := range d.Sets {
		if set.IsOpen() {
			continue
		}
		r.Sets = append(r.Sets, reportSet{
			Number:      set.SetNumber,
			HomeScore:   set.HomeScore,
			AwayScore:   set.AwayScore,
			DurationSec: set.DurationSec,
		})
	}
	if side, ok := d.SetsWon.Winner(); ok {
		r.Winner = side
		r.WinnerTeamID = d.TeamID(side)
	}
	if r.Players == nil {
		r.Players = []PlayerTotal{}
	}
	return r
}

// canonicalReport returns the JCS form of the report and its SHA-256.
func canonicalReport(r *MatchReportPayload) ([]byte, string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, "", fmt.Errorf("marshal report: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, "", fmt.Errorf("canonicalize report: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return canonical, hex.EncodeToString(sum[:]), nil
}

// Archive stores the report of a finished match. Archiving an unchanged
// report again returns the stored row.
func (s *ReportService) Archive(ctx context.Context, matchID string) (*models.MatchReport, error) {
	detail, err := s.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if detail.Status != scoring.StatusFinished {
		return nil, apperr.InvalidState("only finished matches can be archived (status %q)", detail.Status)
	}

	canonical, digest, err := canonicalReport(buildReport(detail))
	if err != nil {
		return nil, apperr.Internal(err, "failed to build match report")
	}

	db := s.Matches.DB.WithContext(ctx)
	var existing models.MatchReport
	err = db.Where("match_id = ? AND digest = ?", matchID, digest).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err, "failed to look up match report")
	}

	report := &models.MatchReport{
		ID:      uuid.NewString(),
		MatchID: matchID,
		Digest:  digest,
		Payload: datatypes.JSON(canonical),
	}
	if s.Store != nil {
		key := fmt.Sprintf("reports/%s/%s.json", matchID, digest)
		url, err := s.Store.PutObject(ctx, key, canonical, "application/json")
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("match_id", matchID), zap.String("operation", "archive_report"))
			return nil, apperr.Internal(err, "failed to upload match report")
		}
		report.ObjectKey = key
		report.URL = url
	}

	if err := db.Create(report).Error; err != nil {
		if isUniqueViolation(err) {
			if err := db.Where("match_id = ? AND digest = ?", matchID, digest).First(&existing).Error; err == nil {
				return &existing, nil
			}
		}
		return nil, apperr.Internal(err, "failed to store match report")
	}

	logger.InfoCtx(ctx, "Match report archived", zap.String("match_id", matchID), zap.String("digest", digest))
	return report, nil
}

// Latest returns the most recently archived report of a match.
func (s *ReportService) Latest(ctx context.Context, matchID string) (*models.MatchReport, error) {
	if err := parseID("match", matchID); err != nil {
		return nil, err
	}
	var report models.MatchReport
	err := s.Matches.DB.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("match %s has no archived report", matchID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load match report")
	}
	return &report, nil
}
