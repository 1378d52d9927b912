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

package scene

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/simpletrackers/go-tracker/pkg/calibration"
	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/metrics"
	"github.com/simpletrackers/go-tracker/pkg/pose"
	"github.com/simpletrackers/go-tracker/pkg/skeleton"
)

const (
	// AxisLength is the length of each published axis line in metres
	AxisLength = 0.3
)

// SceneServer drives pose source -> calibration -> skeleton at a fixed rate.
// Everything but the Publisher belongs to the tick goroutine.
type SceneServer struct {
	cfg       *config.Config
	source    pose.TrackingSystem
	classes   []pose.DeviceClass
	engine    *calibration.Engine
	model     *skeleton.Model
	publisher *Publisher
	metrics   *metrics.Metrics
	session   string

	interval time.Duration
	device   *pose.DeviceIndex
	ticks    uint64
	skipped  uint64
}

// NewSceneServer discovers the tracked device and publishes the static skeleton
func NewSceneServer(cfg *config.Config, source pose.TrackingSystem, publisher *Publisher) (*SceneServer, error) {
	interval, err := tickInterval(cfg.SceneConfig.TickRate)
	if err != nil {
		return nil, err
	}
	classes, err := pose.ParseDeviceClasses(cfg.SceneConfig.DeviceClasses)
	if err != nil {
		return nil, err
	}
	s := &SceneServer{
		cfg:       cfg,
		source:    source,
		classes:   classes,
		engine:    calibration.New(calibration.NewConfig(cfg.CalibrationConfig)),
		model:     skeleton.New(),
		publisher: publisher,
		metrics:   metrics.New(),
		session:   uuid.New().String(),
		interval:  interval,
	}
	log.Info("Initializing scene session: %s source: %s tick rate: %.1f Hz", s.session, cfg.SceneConfig.Source, cfg.SceneConfig.TickRate)
	s.discover()
	s.publisher.Publish(s.model.Geometry(), s.engine.State())
	s.publisher.SetStatus(s.status())
	return s, nil
}

func tickInterval(rate float64) (time.Duration, error) {
	if math.IsNaN(rate) || rate <= 0 {
		return 0, config.ErrInvalidConfig{Field: "scene.tick_rate", What: "must be positive"}
	}
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		return 0, config.ErrInvalidConfig{Field: "scene.tick_rate", What: "interval below 1ns"}
	}
	return interval, nil
}

func (s *SceneServer) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *SceneServer) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *SceneServer) Publisher() *Publisher {
	return s.publisher
}

func (s *SceneServer) status() Status {
	return Status{
		Session:    s.session,
		Source:     s.cfg.SceneConfig.Source,
		Device:     s.device,
		Ticks:      s.ticks,
		Skipped:    s.skipped,
		Calibrated: s.engine.State().Calibrated,
	}
}

// discover runs once per session, before the first tick. Not finding a device is not fatal,
// the scene keeps ticking without updates.
func (s *SceneServer) discover() {
	device, err := pose.Discover(s.source, s.classes...)
	if err != nil {
		var notFound pose.ErrDeviceNotFound
		if errors.As(err, &notFound) {
			log.Warning("%s", err)
			return
		}
		log.Error("Error while discovering device: %s", err)
		return
	}
	log.Info("Tracking device %d", device)
	s.device = &device
}

// Step runs one tick
func (s *SceneServer) Step() {
	defer func() { s.publisher.SetStatus(s.status()) }()

	if s.device == nil {
		s.skip(metrics.SkipNoDevice)
		return
	}
	result, ok := s.engine.Tick(s.source.Pose(*s.device))
	if !ok {
		s.skip(metrics.SkipInvalidPose)
		return
	}

	s.model.Update(result.Wrist, result.Fingertip)
	geometry := s.model.Geometry()
	geometry.Axis = skeleton.Axis(result.Rotation, AxisLength)
	state := s.engine.State()

	s.ticks++
	s.metrics.Tick()
	s.metrics.SetCalibrated(state.Calibrated)
	s.publisher.Publish(geometry, state)
}

func (s *SceneServer) skip(reason string) {
	s.skipped++
	s.metrics.SkippedTick(reason)
}

// Run ticks until ctx is done and returns nil
func (s *SceneServer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Info("Starting scene loop, interval: %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping scene loop after %d ticks, %d skipped", s.ticks, s.skipped)
			return nil
		case <-ticker.C:
			s.Step()
		}
	}
}
