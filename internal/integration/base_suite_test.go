package integration_test

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-aggregator/internal/app"
	"github.com/metinatakli/showtime-aggregator/internal/cache"
	"github.com/metinatakli/showtime-aggregator/internal/config"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "showtimes"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
)

type BaseSuite struct {
	suite.Suite
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer

	logger      *slog.Logger
	db          *pgxpool.Pool
	store       *repository.PostgresStore
	redisClient *redis.Client
	cache       *cache.Cache
	handler     http.Handler
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start postgres container")
	s.dbContainer = postgresContainer

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start redis container")
	s.cacheContainer = redisContainer

	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	s.db, err = repository.NewPool(ctx, repository.PoolConfig{
		DSN:          postgresContainer.ConnectionString,
		MaxOpenConns: 25,
		MaxIdleTime:  2 * time.Minute,
	})
	s.Require().NoError(err, "cannot connect to postgres")

	s.store = repository.NewPostgresStore(s.db)
	s.Require().NoError(s.store.Migrate(ctx))

	s.redisClient, err = cache.NewClient(ctx, cache.ClientConfig{
		URL:          redisContainer.ConnectionString,
		MaxOpenConns: 10,
		MaxIdleConns: 10,
		MaxIdleTime:  2 * time.Minute,
	})
	s.Require().NoError(err, "cannot connect to redis")

	s.cache = cache.New(s.redisClient, time.Minute)

	cfg := &config.Config{
		Env: "test",
		API: config.APIConfig{
			Port:            3000,
			DefaultPageSize: 10,
			MaxPageSize:     50,
		},
	}

	s.handler = app.NewHandler(cfg, s.logger, repository.NewRegistries(s.db), s.cache)
}

func (s *BaseSuite) TearDownSuite() {
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

// SetupTest starts every test from an empty schema and a fresh cache
// generation.
func (s *BaseSuite) SetupTest() {
	ctx := context.Background()

	s.Require().NoError(s.store.Reset(ctx))
	s.Require().NoError(s.cache.Invalidate(ctx))
}

func (s *BaseSuite) registries() domain.Registries {
	return repository.NewRegistries(s.db)
}

func (s *BaseSuite) counts() domain.Counts {
	ctx := context.Background()

	session, err := s.store.Acquire(ctx)
	s.Require().NoError(err)
	defer session.Release()

	counts, err := session.Counts(ctx)
	s.Require().NoError(err)

	return counts
}

type Scenario struct {
	Name             string
	Method           string
	URL              string
	Body             io.Reader
	Headers          map[string]string
	ExpectedStatus   int
	ExpectedResponse string
	BeforeTestFunc   func(t testing.TB, s *BaseSuite)
	AfterTestFunc    func(t testing.TB, s *BaseSuite, res *http.Response)
}

func (sc Scenario) Run(t *testing.T, s *BaseSuite) {
	t.Run(sc.Name, func(t *testing.T) {
		req, err := prepareRequest(sc.Method, sc.URL, sc.Body, sc.Headers)
		require.NoError(t, err)

		if sc.BeforeTestFunc != nil {
			sc.BeforeTestFunc(t, s)
		}

		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)

		res := rec.Result()
		defer res.Body.Close()

		assert.Equal(t, sc.ExpectedStatus, res.StatusCode)

		if sc.ExpectedResponse != "" {
			compareResponse(t, res.Body, sc.ExpectedResponse)
		}

		if sc.AfterTestFunc != nil {
			sc.AfterTestFunc(t, s, res)
		}
	})
}
