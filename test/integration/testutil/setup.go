//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/campusevents/calendar/internal/app"
	"github.com/campusevents/calendar/internal/auth"
	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/infra"
	"github.com/campusevents/calendar/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TestJWTSecret = "integration-test-secret-0123456789abcdef"
	TestDBHost    = "localhost"
	TestDBPort    = 5435
	TestDBUser    = "calendar"
	TestDBPass    = "calendar"
	TestDBName    = "university_events_test"
)

// TestEpoch is the instant the manual clock starts at in every TestEnv.
var TestEpoch = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Clock  *clock.Manual
	Events *service.EventService
	Access *service.AccessService
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

// DSN returns the connection string for the named database on the test server.
func DSN(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, dbName)
}

// EnsureDatabase creates dbName if missing. With fresh set it is dropped first.
func EnsureDatabase(dbName string, fresh bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the maintenance database to create the test database
	bPool, err := pgxpool.New(ctx, DSN("postgres"))
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	if fresh {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)); err != nil {
			return fmt.Errorf("drop %s: %w", dbName, err)
		}
	}

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
			return fmt.Errorf("create %s: %w", dbName, err)
		}
	}
	return nil
}

// MigrationsDir locates db/migrations from the test's working directory.
func MigrationsDir() string {
	return infra.FindMigrationDir()
}

// Migrate applies all migrations to dbName.
func Migrate(dbName string) error {
	return MigrateInZone(dbName, "UTC")
}

// MigrateInZone runs the migrations with the session time zone the API would
// use for CALENDAR_TIMEZONE=tz.
func MigrateInZone(dbName, tz string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := &infra.Config{DatabaseURL: DSN(dbName), CalendarTimezone: tz}
	return infra.RunMigrations(cfg.MigrationDSN(), MigrationsDir(), logger)
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := EnsureDatabase(TestDBName, false); err != nil {
			poolErr = err
			return
		}
		if err := Migrate(TestDBName); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(DSN(TestDBName))
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the
// real router, the test database and a manual clock at TestEpoch.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)

	clk := clock.NewManual(TestEpoch)
	jwtMgr := auth.NewJWTManager(TestJWTSecret, 8*time.Hour, clk)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	deps := app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		Clock:              clk,
		Location:           time.UTC,
		CORSAllowedOrigins: "*",
		LoginRateLimit:     1000,
		LoginRateWindow:    time.Minute,
	}
	events, access := app.Services(deps)
	server := httptest.NewServer(app.NewRouter(deps))

	env := &TestEnv{
		Server: server,
		Pool:   pool,
		JWTMgr: jwtMgr,
		Clock:  clk,
		Events: events,
		Access: access,
		t:      t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}
