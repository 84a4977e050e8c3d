package services_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"volleyball-live-system/messaging"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
	skipReason  string
)

// TestMain starts PostgreSQL (or uses TEST_DB_HOST) and migrates the schema.
// Without either, the database tests are skipped.
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn, err := testDSN(ctx)
	if err != nil {
		skipReason = err.Error()
		fmt.Printf("Database tests skipped: %v\n", err)
		os.Exit(m.Run())
	}

	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		terminate(ctx)
		os.Exit(1)
	}
	if err := models.Migrate(testDB); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	terminate(ctx)
	os.Exit(code)
}

func testDSN(ctx context.Context) (dsn string, err error) {
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		port := envOr("TEST_DB_PORT", "5432")
		user := envOr("TEST_DB_USER", "postgres")
		password := envOr("TEST_DB_PASSWORD", "postgres")
		name := envOr("TEST_DB_NAME", "test_db")
		fmt.Printf("Using external database: %s:%s/%s\n", host, port, name)
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, name), nil
	}

	// Some Docker discovery paths panic instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	pgContainer, err = postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}
	return pgContainer.ConnectionString(ctx, "sslmode=disable")
}

func terminate(ctx context.Context) {
	if pgContainer == nil {
		return
	}
	if err := pgContainer.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skipf("no test database: %s", skipReason)
	}
	return testDB
}

// recordingPublisher keeps every published live event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.LiveEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev messaging.LiveEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) kinds() []messaging.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.EventKind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (p *recordingPublisher) last() messaging.LiveEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return messaging.LiveEvent{}
	}
	return p.events[len(p.events)-1]
}

type fixture struct {
	db        *gorm.DB
	svc       *services.MatchService
	roster    *services.RosterService
	stats     *services.StatisticsService
	publisher *recordingPublisher

	home, away  *models.Team
	homePlayers []*models.Player
	awayPlayers []*models.Player
	match       *models.Match
}

// newFixture creates two teams with two players each and a scheduled match
// between them. Names carry a random suffix so tests share one database.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := requireDB(t)
	ctx := context.Background()

	f := &fixture{
		db:        db,
		stats:     services.NewStatisticsService(db),
		publisher: &recordingPublisher{},
	}
	f.roster = services.NewRosterService(db, services.WithRosterNotifier(f.stats))
	f.svc = services.NewMatchService(db,
		services.WithPublisher(f.publisher),
		services.WithChangeNotifier(f.stats),
	)

	suffix := uuid.NewString()[:8]
	var err error
	f.home, err = f.roster.CreateTeam(ctx, "Home "+suffix)
	require.NoError(t, err)
	f.away, err = f.roster.CreateTeam(ctx, "Away "+suffix)
	require.NoError(t, err)

	for i, name := range []string{"Andrea", "Beatriz"} {
		p, err := f.roster.CreatePlayer(ctx, services.CreatePlayerInput{
			TeamID: f.home.ID, Name: name + " " + suffix, JerseyNumber: i + 1, Position: "OP",
		})
		require.NoError(t, err)
		f.homePlayers = append(f.homePlayers, p)
	}
	for i, name := range []string{"Carla", "Diana"} {
		p, err := f.roster.CreatePlayer(ctx, services.CreatePlayerInput{
			TeamID: f.away.ID, Name: name + " " + suffix, JerseyNumber: i + 1, Position: "CE",
		})
		require.NoError(t, err)
		f.awayPlayers = append(f.awayPlayers, p)
	}

	lat, lon := 4.7110, -74.0721
	f.match, err = f.svc.CreateMatch(ctx, services.CreateMatchInput{
		HomeTeamID: f.home.ID,
		AwayTeamID: f.away.ID,
		Date:       time.Now().Add(24 * time.Hour),
		Location:   "Coliseo El Salitre",
		Latitude:   &lat,
		Longitude:  &lon,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	_, err := f.svc.StartMatch(context.Background(), f.match.ID)
	require.NoError(t, err)
}

// setScore writes a set score directly, standing in for a run of rallies.
func (f *fixture) setScore(t *testing.T, setNumber, home, away int) {
	t.Helper()
	err := f.db.Model(&models.Set{}).
		Where("match_id = ? AND set_number = ?", f.match.ID, setNumber).
		Updates(map[string]interface{}{"home_score": home, "away_score": away}).Error
	require.NoError(t, err)
}

// playSet opens set n (set 1 is opened by StartMatch), gives it the score
// and ends it.
func (f *fixture) playSet(t *testing.T, n, home, away int) *services.EndSetResult {
	t.Helper()
	ctx := context.Background()
	if n > 1 {
		res, err := f.svc.StartSet(ctx, f.match.ID)
		require.NoError(t, err)
		require.Equal(t, n, res.SetNumber)
	}
	f.setScore(t, n, home, away)
	res, err := f.svc.EndSet(ctx, f.match.ID)
	require.NoError(t, err)
	return res
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
