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

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestCounters(t *testing.T) {
	m := New()
	m.DatagramReceived()
	m.DatagramReceived()
	m.PacketDecoded(3)
	m.SizeMismatch()
	m.TransportError()
	m.Tick()
	m.SkippedTick(SkipInvalidPose)
	m.SkippedTick(SkipInvalidPose)
	m.SkippedTick(SkipNoDevice)
	m.SetCalibrated(true)

	body := scrape(t, m)
	for _, line := range []string{
		"go_tracker_telemetry_datagrams_received_total 2",
		`go_tracker_telemetry_packets_decoded_total{tracker="3"} 1`,
		"go_tracker_telemetry_size_mismatches_total 1",
		"go_tracker_telemetry_transport_errors_total 1",
		"go_tracker_scene_ticks_total 1",
		`go_tracker_scene_skipped_ticks_total{reason="invalid_pose"} 2`,
		`go_tracker_scene_skipped_ticks_total{reason="no_device"} 1`,
		"go_tracker_scene_calibrated 1",
	} {
		assert.Contains(t, body, line)
	}

	m.SetCalibrated(false)
	assert.Contains(t, scrape(t, m), "go_tracker_scene_calibrated 0")
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.SizeMismatch()
	assert.Contains(t, scrape(t, a), "go_tracker_telemetry_size_mismatches_total 1")
	assert.Contains(t, scrape(t, b), "go_tracker_telemetry_size_mismatches_total 0")
}
