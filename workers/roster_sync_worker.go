package workers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"volleyball-live-system/config"
	"volleyball-live-system/logger"
	"volleyball-live-system/services"
	"volleyball-live-system/utils"
)

// RosterStore persists teams and players pulled from the roster service.
type RosterStore interface {
	UpsertTeams(ctx context.Context, teams []services.RemoteTeam) (int, error)
	UpsertPlayers(ctx context.Context, players []services.RemotePlayer) (upserted, skipped int, err error)
	LastSyncedAt(ctx context.Context) (time.Time, error)
}

// RosterChangesResponse is the body returned by the roster service.
type RosterChangesResponse struct {
	Teams   []services.RemoteTeam   `json:"teams"`
	Players []services.RemotePlayer `json:"players"`
}

type RosterSyncWorker struct {
	store        RosterStore
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/rosters"
	serviceToken string
	httpClient   *http.Client
}

func NewRosterSyncWorker(store RosterStore, cfg config.RosterSyncConfig) *RosterSyncWorker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &RosterSyncWorker{
		store:        store,
		interval:     interval,
		baseURL:      cfg.BaseURL,
		endpointPath: cfg.EndpointPath,
		serviceToken: cfg.ServiceToken,
		httpClient:   utils.NewHTTPClient(30 * time.Second),
	}
}

func (w *RosterSyncWorker) Start(ctx context.Context) {
	logger.Info("[ROSTER_SYNC] starting worker", zap.String("base_url", w.baseURL), zap.Duration("interval", w.interval))
	go w.run(ctx)
}

func (w *RosterSyncWorker) run(ctx context.Context) {
	// Backfill from the beginning of time.
	if err := w.SyncOnce(ctx, time.Time{}); err != nil {
		logger.Warn("[ROSTER_SYNC] initial sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			since, err := w.store.LastSyncedAt(ctx)
			if err != nil {
				logger.Warn("[ROSTER_SYNC] failed to read last sync time", zap.Error(err))
				continue
			}
			if err := w.SyncOnce(ctx, since); err != nil {
				logger.Warn("[ROSTER_SYNC] sync batch failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("[ROSTER_SYNC] worker stopped")
			return
		}
	}
}

// SyncOnce fetches the roster changes since the given time and upserts
// them. Teams go first so players can resolve their team.
func (w *RosterSyncWorker) SyncOnce(ctx context.Context, since time.Time) error {
	changes, err := w.fetch(ctx, since)
	if err != nil {
		return err
	}
	if len(changes.Teams) == 0 && len(changes.Players) == 0 {
		logger.Debug("[ROSTER_SYNC] no roster changes", zap.Time("since", since))
		return nil
	}

	teams, err := w.store.UpsertTeams(ctx, changes.Teams)
	if err != nil {
		return fmt.Errorf("upsert teams: %w", err)
	}
	players, skipped, err := w.store.UpsertPlayers(ctx, changes.Players)
	if err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}

	logger.Info("[ROSTER_SYNC] synced roster",
		zap.Int("teams", teams),
		zap.Int("players", players),
		zap.Int("players_skipped", skipped),
		zap.Time("since", since))
	return nil
}

func (w *RosterSyncWorker) fetch(ctx context.Context, since time.Time) (*RosterChangesResponse, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid roster service URL %q: %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()

	var changes RosterChangesResponse
	header := http.Header{"X-Service-Token": {w.serviceToken}}
	if err := utils.GetJSON(ctx, w.httpClient, "roster service", endpointURL.String(), header, &changes); err != nil {
		return nil, err
	}
	return &changes, nil
}
