//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coach-match-workers/internal/common/config"
	"coach-match-workers/internal/common/database"
	"coach-match-workers/internal/common/kvstore"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/matching"

	validatesubscription "coach-match-workers/internal/workers/billing/validate-subscription"
	searchcoaches "coach-match-workers/internal/workers/data-access/search-coaches"
	calculatematchscore "coach-match-workers/internal/workers/matching/calculate-match-score"
	rankcoaches "coach-match-workers/internal/workers/matching/rank-coaches"
	managereviewtoken "coach-match-workers/internal/workers/reviews/manage-review-token"
	notifycoachreview "coach-match-workers/internal/workers/reviews/notify-coach-review"
)

const testIndex = "coaches-e2e"

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	var err error

	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         envOr("ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewDevelopment()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type services struct {
	db  *sql.DB
	es  *elasticsearch.Client
	rdb *redis.Client
	log logger.Logger
}

func TestFullE2E(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	t.Log("🚀 Starting E2E run against live services...")

	svc := connectServices(t, cfg)
	seedDatabase(t, svc.db)
	seedIndex(t, svc.es)
	deployAllBPMN(t)

	t.Run("search-coaches", func(t *testing.T) { testSearchCoaches(t, svc) })
	t.Run("calculate-match-score", func(t *testing.T) { testCalculateMatchScore(t, svc) })
	t.Run("rank-coaches", func(t *testing.T) { testRankCoaches(t, svc) })
	t.Run("validate-subscription", func(t *testing.T) { testValidateSubscription(t, svc) })
	t.Run("manage-review-token", func(t *testing.T) { testManageReviewToken(t, svc) })
	t.Run("notify-coach-review", func(t *testing.T) { testNotifyCoachReview(t, svc) })

	t.Log("✅ E2E run finished")
}

// ==========================
// 1. Connectivity
// ==========================
func connectServices(t *testing.T, cfg *config.Config) *services {
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })
	t.Log("✅ PostgreSQL connected")

	rdb := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })
	t.Log("✅ Redis connected")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")
	t.Log("✅ Elasticsearch connected")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "Zeebe topology request failed")
	t.Log("✅ Zeebe connected")

	return &services{db: pg.DB, es: es.Client, rdb: rdb.Client, log: logger.NewZapAdapter(zapLog)}
}

// ==========================
// 2. Database Tables Setup + Test Data
// ==========================
func seedDatabase(t *testing.T, db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS coach_profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			specialties JSONB,
			available_formats JSONB,
			hourly_rate NUMERIC,
			currency TEXT,
			certifications JSONB,
			languages JSONB,
			coaching_hours INTEGER,
			average_rating NUMERIC,
			total_reviews INTEGER,
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS coach_subscriptions (
			coach_id TEXT PRIMARY KEY,
			tier TEXT NOT NULL,
			expires_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`INSERT INTO coach_profiles
			(id, name, email, notifications_enabled, specialties, available_formats, hourly_rate, currency,
			 certifications, languages, coaching_hours, average_rating, total_reviews)
		VALUES
			('e2e-coach-1', 'Ada Lovelace', NULL, FALSE, '["Career Growth","Leadership"]', '["Online","Hybrid"]',
			 150, 'USD', '["ICF PCC"]', '["English"]', 900, 4.9, 120),
			('e2e-coach-2', 'Grace Hopper', NULL, FALSE, '["Leadership"]', '["In-Person"]',
			 400, 'USD', '[]', '["English","Spanish"]', 120, 4.2, 9)
		ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO coach_subscriptions (coach_id, tier, expires_at, is_active)
		VALUES ('e2e-coach-1', 'premium', NOW() + INTERVAL '30 days', TRUE)
		ON CONFLICT (coach_id) DO NOTHING`,
	}

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	t.Log("✅ Database tables created with test data")
}

func seedIndex(t *testing.T, es *elasticsearch.Client) {
	ctx := context.Background()

	mapping := `{
	  "mappings": {
	    "properties": {
	      "name": {"type": "text"},
	      "bio": {"type": "text"},
	      "specialties": {"type": "keyword"},
	      "available_formats": {"type": "keyword"},
	      "certifications": {"type": "keyword"},
	      "languages": {"type": "keyword"},
	      "hourly_rate": {"type": "float"},
	      "coaching_hours": {"type": "integer"},
	      "average_rating": {"type": "float"},
	      "total_reviews": {"type": "integer"}
	    }
	  }
	}`
	res, err := esapi.IndicesCreateRequest{Index: testIndex, Body: strings.NewReader(mapping)}.Do(ctx, es)
	require.NoError(t, err)
	res.Body.Close()

	docs := []map[string]interface{}{
		{
			"id": "e2e-coach-1", "name": "Ada Lovelace", "bio": "Career coach for engineers moving into leadership",
			"specialties": []string{"Career Growth", "Leadership"}, "available_formats": []string{"Online", "Hybrid"},
			"hourly_rate": 150, "currency": "USD", "certifications": []string{"ICF PCC"},
			"languages": []string{"English"}, "coaching_hours": 900, "average_rating": 4.9, "total_reviews": 120,
		},
		{
			"id": "e2e-coach-2", "name": "Grace Hopper", "bio": "Leadership coaching in person",
			"specialties": []string{"Leadership"}, "available_formats": []string{"In-Person"},
			"hourly_rate": 400, "currency": "USD", "languages": []string{"English", "Spanish"},
			"coaching_hours": 120, "average_rating": 4.2, "total_reviews": 9,
		},
	}
	for _, doc := range docs {
		body, err := json.Marshal(doc)
		require.NoError(t, err)
		res, err := esapi.IndexRequest{
			Index:      testIndex,
			DocumentID: doc["id"].(string),
			Body:       bytes.NewReader(body),
			Refresh:    "true",
		}.Do(ctx, es)
		require.NoError(t, err)
		require.False(t, res.IsError(), res.String())
		res.Body.Close()
	}
	t.Log("✅ Coach index seeded")
}

// ==========================
// 3. Deploy BPMN Files
// ==========================
func deployAllBPMN(t *testing.T) {
	var dir string
	for _, candidate := range []string{"bpmn", "../bpmn", "../../bpmn"} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			dir = candidate
			break
		}
	}
	if dir == "" {
		t.Log("⚠️ BPMN directory not found, skipping deployment")
		return
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.bpmn"))
	require.NoError(t, err)
	for _, path := range files {
		if _, err := zeebeClient.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background()); err != nil {
			t.Logf("⚠️ Failed to deploy %s: %v", path, err)
			continue
		}
		t.Logf("✅ Deployed: %s", filepath.Base(path))
	}
}

// ==========================
// 4. Workers
// ==========================
func preferences() matching.ClientPreferences {
	budget := 200.0
	return matching.ClientPreferences{
		Specialty: matching.SpecialtyCareerGrowth,
		Formats:   []matching.SessionFormat{matching.FormatOnline},
		Budget:    &budget,
		Languages: []string{"English"},
	}
}

func testSearchCoaches(t *testing.T, svc *services) {
	handler := searchcoaches.NewHandler(searchcoaches.LoadConfig(), svc.es, svc.log)

	out, err := handler.Execute(context.Background(), &searchcoaches.Input{
		IndexName:   testIndex,
		Keywords:    "leadership",
		Preferences: preferences(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Coaches)
	assert.Equal(t, "e2e-coach-1", out.Coaches[0].ID)
}

func testCalculateMatchScore(t *testing.T, svc *services) {
	handler := calculatematchscore.NewHandler(calculatematchscore.LoadConfig(), svc.db, svc.rdb, svc.log)

	out, err := handler.Execute(context.Background(), &calculatematchscore.Input{
		CoachID:     "e2e-coach-1",
		Preferences: preferences(),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.MatchScore, 90)
	assert.NotEmpty(t, out.MatchReason)
}

func testRankCoaches(t *testing.T, svc *services) {
	handler := rankcoaches.NewHandler(rankcoaches.LoadConfig(), svc.db, svc.rdb, svc.log)

	out, err := handler.Execute(context.Background(), &rankcoaches.Input{
		CoachIDs:    []string{"e2e-coach-2", "e2e-coach-1", "e2e-missing"},
		Preferences: preferences(),
	})
	require.NoError(t, err)
	require.Len(t, out.RankedCoaches, 2)
	assert.Equal(t, "e2e-coach-1", out.RankedCoaches[0].CoachID)
}

func testValidateSubscription(t *testing.T, svc *services) {
	handler := validatesubscription.NewHandler(validatesubscription.LoadConfig(), svc.db, svc.rdb, svc.log)

	out, err := handler.Execute(context.Background(), &validatesubscription.Input{
		CoachID:         "e2e-coach-1",
		RequiredFeature: validatesubscription.FeatureMatchBadges,
	})
	require.NoError(t, err)
	assert.True(t, out.IsValid)

	_, err = handler.Execute(context.Background(), &validatesubscription.Input{CoachID: "e2e-coach-2"})
	assert.Error(t, err)
}

func testManageReviewToken(t *testing.T, svc *services) {
	store := kvstore.NewRedisStore(svc.rdb, "review-e2e")
	handler := managereviewtoken.NewHandler(managereviewtoken.LoadConfig(), store, svc.log)
	ctx := context.Background()

	issued, err := handler.Execute(ctx, &managereviewtoken.Input{
		Action:   managereviewtoken.ActionIssue,
		ReviewID: "e2e-review-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)

	verified, err := handler.Execute(ctx, &managereviewtoken.Input{
		Action:   managereviewtoken.ActionVerify,
		ReviewID: "e2e-review-1",
		Token:    issued.Token,
	})
	require.NoError(t, err)
	assert.True(t, verified.Valid)

	_, err = handler.Execute(ctx, &managereviewtoken.Input{
		Action:   managereviewtoken.ActionRevoke,
		ReviewID: "e2e-review-1",
		Token:    issued.Token,
	})
	require.NoError(t, err)
}

func testNotifyCoachReview(t *testing.T, svc *services) {
	// Seeded coaches opt out of notifications, so no AWS call is made.
	handler := notifycoachreview.NewHandler(notifycoachreview.LoadConfig(), svc.db, svc.rdb, nil, nil, svc.log)

	out, err := handler.Execute(context.Background(), &notifycoachreview.Input{
		CoachID:  "e2e-coach-1",
		ReviewID: "e2e-review-1",
		Rating:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, notifycoachreview.StatusDisabled, out.Status)
}

// ==========================
// Benchmark Tests
// ==========================
func BenchmarkHandler_CalculateMatchScore(b *testing.B) {
	cfg, err := config.Load()
	require.NoError(b, err)
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(b, err)
	defer pg.Close()
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()

	handler := calculatematchscore.NewHandler(calculatematchscore.LoadConfig(), pg.DB, rdb.Client, logger.NewNoOpLogger())
	input := &calculatematchscore.Input{CoachID: "e2e-coach-1", Preferences: preferences()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_ValidateSubscription(b *testing.B) {
	cfg, err := config.Load()
	require.NoError(b, err)
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(b, err)
	defer pg.Close()
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()

	handler := validatesubscription.NewHandler(validatesubscription.LoadConfig(), pg.DB, rdb.Client, logger.NewNoOpLogger())
	input := &validatesubscription.Input{CoachID: "e2e-coach-1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
