package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) {
	t.Helper()

	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "10485760")
	t.Setenv("OBJECT_STORE_BACKEND", "memory")
	t.Setenv("OBJECT_STORE_PUBLIC_URL", "https://cdn.example.com")
	t.Setenv("INDEX_BACKEND", "memory")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	listSearch, reconcileRepair = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestCommandStructure(t *testing.T) {
	for _, name := range []string{"stats", "list", "get", "delete", "reconcile"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestStats_EmptyStore(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "stats")
	require.NoError(t, err)

	var stats entity.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Zero(t, stats.TotalImages)
	assert.Equal(t, entity.ServiceRunning, stats.ServiceStatus)
}

func TestList_EmptyStore(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "list", "--limit", "5")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestGet_InvalidID(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "get", "not-a-uuid")
	assert.Error(t, err)
}

func TestDelete_Missing(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "delete", uuid.NewString())
	assert.Error(t, err)
}

func TestReconcile_Clean(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "reconcile")
	require.NoError(t, err)

	var report entity.ReconcileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Clean())
}

func TestConfig_MissingUploadLimit(t *testing.T) {
	memoryEnv(t)
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "")

	_, err := run(t, "stats")
	assert.Error(t, err)
}
