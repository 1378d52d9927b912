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

// Package metrics exposes prometheus counters for the receiver and the scene loop.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "go_tracker"

	SkipNoDevice    = "no_device"
	SkipInvalidPose = "invalid_pose"
)

type Metrics struct {
	registry *prometheus.Registry

	datagramsReceived prometheus.Counter
	packetsDecoded    *prometheus.CounterVec
	sizeMismatches    prometheus.Counter
	transportErrors   prometheus.Counter

	ticks        prometheus.Counter
	skippedTicks *prometheus.CounterVec
	calibrated   prometheus.Gauge
}

// New registers all metrics on a fresh registry so several servers can live in one process.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)
	return &Metrics{
		registry: registry,
		datagramsReceived: auto.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "telemetry",
			Name:      "datagrams_received_total",
			Help:      "Datagrams read from the socket",
		}),
		packetsDecoded: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "telemetry",
			Name:      "packets_decoded_total",
			Help:      "Telemetry packets decoded, by tracker id",
		}, []string{"tracker"}),
		sizeMismatches: auto.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "telemetry",
			Name:      "size_mismatches_total",
			Help:      "Datagrams dropped because of an unexpected size",
		}),
		transportErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "telemetry",
			Name:      "transport_errors_total",
			Help:      "Receive errors other than size mismatch",
		}),
		ticks: auto.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scene",
			Name:      "ticks_total",
			Help:      "Scene ticks that updated geometry",
		}),
		skippedTicks: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scene",
			Name:      "skipped_ticks_total",
			Help:      "Scene ticks that left geometry untouched, by reason",
		}, []string{"reason"}),
		calibrated: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "scene",
			Name:      "calibrated",
			Help:      "1 once the calibration offset is fixed",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) DatagramReceived() {
	m.datagramsReceived.Inc()
}

func (m *Metrics) PacketDecoded(trackerID uint8) {
	m.packetsDecoded.WithLabelValues(strconv.Itoa(int(trackerID))).Inc()
}

func (m *Metrics) SizeMismatch() {
	m.sizeMismatches.Inc()
}

func (m *Metrics) TransportError() {
	m.transportErrors.Inc()
}

func (m *Metrics) Tick() {
	m.ticks.Inc()
}

func (m *Metrics) SkippedTick(reason string) {
	m.skippedTicks.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetCalibrated(calibrated bool) {
	if calibrated {
		m.calibrated.Set(1)
		return
	}
	m.calibrated.Set(0)
}
