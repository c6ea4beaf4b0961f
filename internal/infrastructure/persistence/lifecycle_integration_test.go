//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/pharmapos/backend/internal/infrastructure/migration"
	"github.com/pharmapos/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// newPostgresDatabase starts a throwaway PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pharmapos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "pharmapos_test",
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	})
	require.NoError(t, err)

	// the migrator gets its own handle; closing it closes the handle
	migrationDB, err := NewDatabase(&config.DatabaseConfig{
		Driver: "postgres", Host: host, Port: port.Int(), User: "postgres",
		Password: "postgres", DBName: "pharmapos_test", SSLMode: "disable",
		MaxOpenConns: 1, MaxIdleConns: 1,
	})
	require.NoError(t, err)
	sqlDB, err := migrationDB.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	assert.False(t, dirty)
	_ = m.Close()

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPurchaseLifecycle_Postgres(t *testing.T) {
	db := newPostgresDatabase(t)
	exercisePurchaseLifecycle(t, db.DB)
}

func TestConcurrentCreates_Postgres(t *testing.T) {
	db := newPostgresDatabase(t)
	st := newPurchasingStack(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	const n = 16
	numbers := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := st.service.Create(ctx, tenantID, uuid.New(), createRequestFor("CONCURRENT"))
			if err != nil {
				errs <- err
				return
			}
			numbers <- resp.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Errorf("create failed: %v", err)
	}
	seen := map[string]bool{}
	for number := range numbers {
		assert.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestConcurrentUpdates_Postgres(t *testing.T) {
	db := newPostgresDatabase(t)
	st := newPurchasingStack(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := st.service.Create(ctx, tenantID, uuid.New(), createRequestFor(""))
	require.NoError(t, err)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			version := created.Version
			remark := uuid.NewString()
			_, err := st.service.Update(ctx, tenantID, uuid.New(), created.ID, updateRemark(&version, &remark))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case shared.ErrorCode(err) == shared.CodeConcurrencyConflict:
				conflicts++
			default:
				t.Errorf("unexpected update error: %v", err)
			}
		}()
	}
	wg.Wait()

	// every writer read the same version, so exactly one may win
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, conflicts)
}
