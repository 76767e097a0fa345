package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/kun/log"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "stop", cfg.Engine.Policy)
	assert.Equal(t, 20, cfg.Task.Quota)
	assert.Equal(t, 1000, cfg.Engine.RepeatLimit)
	assert.Equal(t, 10000, cfg.Engine.WhileLimit)
	assert.Equal(t, 16, cfg.Engine.ResolveDepth)
	assert.Equal(t, 16, cfg.Function.MaxDepth)
	assert.Equal(t, 5000, cfg.Function.MaxTime)
	assert.Equal(t, "badger", cfg.Stores["persistent"].Driver)
	assert.NoError(t, cfg.Validate())
}

func TestParseYAML(t *testing.T) {
	t.Setenv("BLOCKS_TEST_QUOTA", "3")
	t.Setenv("BLOCKS_TEST_REDIS", "10.0.0.2")

	cfg, err := Parse("blocks.yml", []byte(`
debug: true
engine:
  policy: continue
task:
  quota: $ENV.BLOCKS_TEST_QUOTA
stores:
  global:
    driver: redis
    option:
      host: $ENV.BLOCKS_TEST_REDIS
schedules:
  - name: nightly
    schedule: "0 3 * * *"
    event: backup
`))
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "continue", cfg.Engine.Policy)
	assert.Equal(t, 3, cfg.Task.Quota)
	assert.Equal(t, 8, cfg.Task.Workers)
	assert.Equal(t, "redis", cfg.Stores["global"].Driver)
	assert.Equal(t, "10.0.0.2", cfg.Stores["global"].Option["host"])
	assert.Equal(t, "memory", cfg.Stores["player"].Driver)
	require.Len(t, cfg.Schedules, 1)
	assert.Equal(t, "backup", cfg.Schedules[0].Event)
}

func TestParseFormats(t *testing.T) {
	cfg, err := Parse("blocks.toml", []byte("scripts = \"./scripts\"\n[function]\nmaxDepth = 4\n"))
	require.NoError(t, err)
	assert.Equal(t, "./scripts", cfg.Scripts)
	assert.Equal(t, 4, cfg.Function.MaxDepth)
	assert.Equal(t, 5000, cfg.Function.MaxTime)

	cfg, err = Parse("blocks.jsonc", []byte(`{
		// watch the scripts
		"watch": true,
		"engine": {"repeatLimit": 50}
	}`))
	require.NoError(t, err)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 50, cfg.Engine.RepeatLimit)
	assert.Equal(t, 10000, cfg.Engine.WhileLimit)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("a.json", []byte(`{"engine": {"policy": "retry"}}`))
	assert.Error(t, err)

	_, err = Parse("a.json", []byte(`{"stores": {"local": {"driver": "memory"}}}`))
	assert.Error(t, err)

	_, err = Parse("a.json", []byte(`{"stores": {"galaxy": {"driver": "memory"}}}`))
	assert.Error(t, err)

	_, err = Parse("a.json", []byte(`{"stores": {"global": {"driver": "etcd"}}}`))
	assert.Error(t, err)

	_, err = Parse("a.json", []byte(`{"log": {"level": "loud"}}`))
	assert.Error(t, err)

	_, err = Parse("a.yaml", []byte("engine: [\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocks.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"task": {"quota": 7}}`), 0644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Task.Quota)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSetLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "blocks.log")
	closer, err := cfg.SetLogger()
	require.NoError(t, err)
	log.Info("config test")
	require.NoError(t, closer())

	cfg.Log.File = filepath.Join(t.TempDir(), "missing", "blocks.log")
	_, err = cfg.SetLogger()
	assert.Error(t, err)
}
