package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/weiawesome/wes-io-live/idgen/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.MaxBatch)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 50053, cfg.GRPC.Port)
	assert.Equal(t, int64(-1), cfg.Snowflake.DatacenterID)
	assert.Equal(t, int64(-1), cfg.Snowflake.WorkerID)
	assert.Equal(t, int64(1288834974657), cfg.Snowflake.Epoch)
	assert.Equal(t, 2*time.Second, cfg.Snowflake.Tolerance)
	assert.Equal(t, 10*time.Second, cfg.ULID.Tolerance)
	assert.Equal(t, "UTC", cfg.Text.Location)
	assert.Equal(t, 5*time.Millisecond, cfg.Text.Tolerance)
	assert.Equal(t, 21, cfg.NanoID.Size)
	assert.Equal(t, 24, cfg.CUID2.Length)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SNOWFLAKE_DATACENTER_ID", "3")
	t.Setenv("SNOWFLAKE_WORKER_ID", "9")
	t.Setenv("TEXTID_SUFFIX", "NODE01")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(3), cfg.Snowflake.DatacenterID)
	assert.Equal(t, int64(9), cfg.Snowflake.WorkerID)
	assert.Equal(t, "NODE01", cfg.Text.Suffix)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadExplicitFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "idgen.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
snowflake:
  datacenter_id: 4
  tolerance: 500ms
text:
  prefix: "ORD-"
log:
  level: debug
`), 0o600))
	t.Setenv(pkgconfig.FileEnv, file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(4), cfg.Snowflake.DatacenterID)
	assert.Equal(t, 500*time.Millisecond, cfg.Snowflake.Tolerance)
	assert.Equal(t, "ORD-", cfg.Text.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, int64(-1), cfg.Snowflake.WorkerID)
}

func TestLoadBrokenFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "idgen.yaml")
	require.NoError(t, os.WriteFile(file, []byte("snowflake: [unclosed"), 0o600))
	t.Setenv(pkgconfig.FileEnv, file)

	_, err := Load()
	assert.Error(t, err)
}
