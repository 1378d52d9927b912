/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, cfg.Load())

	assert.Equal(t, "0.0.0.0", cfg.Address)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60.0, cfg.TickRate)
	assert.Equal(t, Vector{0.1, -0.4, 0.2}, cfg.HandOffset)
	assert.Equal(t, 0.15, cfg.TipLength)
	assert.Equal(t, PoseSourceSim, cfg.Source)
	assert.Equal(t, []string{"generic_tracker"}, cfg.DeviceClasses)
}

func TestPersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigDir, ConfigFile)
	cfg := NewConfig(path)
	cfg.Port = 9001
	cfg.HandOffset = Vector{0, -0.5, 0.1}
	require.NoError(t, cfg.Persist(false))

	err := cfg.Persist(false)
	require.ErrorAs(t, err, &ErrConfigFileExists{})
	require.NoError(t, cfg.Persist(true))

	loaded := NewConfig(path)
	require.NoError(t, loaded.Load())
	assert.Equal(t, 9001, loaded.Port)
	assert.Equal(t, Vector{0, -0.5, 0.1}, loaded.HandOffset)
	assert.Equal(t, DefaultSceneApiPort, loaded.ApiPort)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := `
log_level: debug
scene:
  tick_rate: 90
calibration:
  tip_length: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := NewConfig(path)
	require.NoError(t, cfg.Load())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 90.0, cfg.TickRate)
	assert.Equal(t, 0.2, cfg.TipLength)
	assert.Equal(t, DefaultTelemetryPort, cfg.Port)
	assert.Equal(t, DefaultHandOffset, cfg.HandOffset)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("telemetry:\n  port: 7000\n"), 0644))
	t.Setenv("GO_TRACKER_TELEMETRY_PORT", "7100")
	t.Setenv("GO_TRACKER_SCENE_SOURCE", "telemetry")
	t.Setenv("GO_TRACKER_LOG_LEVEL", "warning")

	cfg := NewConfig(path)
	require.NoError(t, cfg.Load())
	assert.Equal(t, 7100, cfg.Port)
	assert.Equal(t, PoseSourceTelemetry, cfg.Source)
	assert.Equal(t, "warning", cfg.LogLevel)
}

func TestEnvDeviceClassList(t *testing.T) {
	t.Setenv("GO_TRACKER_SCENE_DEVICE_CLASSES", "controller, generic_tracker,")

	cfg := NewConfig(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, cfg.Load())
	assert.Equal(t, []string{"controller", "generic_tracker"}, cfg.DeviceClasses)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "telemetry.port"},
		{"port too big", func(c *Config) { c.Port = 70000 }, "telemetry.port"},
		{"api port", func(c *Config) { c.ApiPort = -1 }, "scene.api_port"},
		{"tick rate", func(c *Config) { c.TickRate = 0 }, "scene.tick_rate"},
		{"tick rate nan", func(c *Config) { c.TickRate = math.NaN() }, "scene.tick_rate"},
		{"tick rate inf", func(c *Config) { c.TickRate = math.Inf(1) }, "scene.tick_rate"},
		{"tick rate too big", func(c *Config) { c.TickRate = 2e9 }, "scene.tick_rate"},
		{"source", func(c *Config) { c.Source = "openvr" }, "scene.source"},
		{"tip length", func(c *Config) { c.TipLength = -0.1 }, "calibration.tip_length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("")
			tt.mutate(cfg)
			err := cfg.Validate()
			var invalid ErrInvalidConfig
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestParseVector(t *testing.T) {
	v, err := ParseVector("0.1, -0.4,0.2")
	require.NoError(t, err)
	assert.Equal(t, Vector{0.1, -0.4, 0.2}, v)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c"} {
		_, err := ParseVector(bad)
		assert.ErrorAs(t, err, &ErrParseVector{}, bad)
	}
}
