//go:build integration

package persistent_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/persistent"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/repotest"
	"github.com/andreyxaxa/Photo-Ingest/pkg/postgres"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgresContainer(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "photo",
			"POSTGRES_PASSWORD": "photo",
			"POSTGRES_DB":       "photo",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return container, fmt.Sprintf("postgres://photo:photo@%s:%s/photo?sslmode=disable", host, port.Port())
}

func TestIntegration_PostgresRecordIndex(t *testing.T) {
	ctx := context.Background()

	container, url := startPostgresContainer(ctx, t)
	defer container.Terminate(ctx)

	pg, err := postgres.New(url, postgres.ConnAttempts(5))
	require.NoError(t, err)
	defer pg.Close()

	require.NoError(t, persistent.Migrate(ctx, pg))

	suite.Run(t, &repotest.RecordIndexSuite{
		NewStore: func() repo.RecordStore {
			_, err := pg.Pool.Exec(ctx, "TRUNCATE images, images_timeline")
			require.NoError(t, err)
			_, err = pg.Pool.Exec(ctx, "UPDATE image_counters SET value = 0")
			require.NoError(t, err)

			return persistent.NewPostgresRecordIndex(pg)
		},
	})
}
