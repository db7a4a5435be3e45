package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "서울시", cfg.Data.ExcludedRegionMarker)
	assert.Equal(t, "소계", cfg.Data.SubtotalLabel)
	assert.Equal(t, "외식업", cfg.Data.DefaultCategory)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	require.NoError(t, cfg.validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SMB_SERVER_PORT", "9090")
	t.Setenv("SMB_DATA_FILE", "/tmp/fixture.csv")
	t.Setenv("SMB_DATA_DEFAULT_CATEGORY", "소매업")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/fixture.csv", cfg.Data.File)
	assert.Equal(t, "소매업", cfg.Data.DefaultCategory)
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	assert.Error(t, cfg.validate())
}

func TestValidate_RejectsEmptyDataFile(t *testing.T) {
	cfg := Default()
	cfg.Data.File = ""
	assert.Error(t, cfg.validate())
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
}

func TestDataFilePath(t *testing.T) {
	cfg := Default()

	cfg.Data.File = "/abs/stats.csv"
	assert.Equal(t, "/abs/stats.csv", cfg.DataFilePath())

	cfg.Data.File = "data/stats.csv"
	assert.Equal(t, "data/stats.csv", cfg.DataFilePath())

	cfg.Data.File = "stats.csv"
	assert.Equal(t, filepath.Join("data", "stats.csv"), cfg.DataFilePath())
}

func TestExportPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("exports", "out.csv"), cfg.ExportPath("out.csv"))
	assert.Equal(t, "/abs/out.csv", cfg.ExportPath("/abs/out.csv"))
}

func TestMergeConfigs_FileFillsGaps(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 3000
	fileCfg.Data.File = "from_file.csv"

	var envCfg Config // all zero values
	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 3000, merged.Server.Port)
	assert.Equal(t, "from_file.csv", merged.Data.File)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir))
}
