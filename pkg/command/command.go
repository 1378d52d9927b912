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

package command

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/metrics"
	"github.com/simpletrackers/go-tracker/pkg/pose"
	"github.com/simpletrackers/go-tracker/pkg/srv/scene"
	"github.com/simpletrackers/go-tracker/pkg/srv/telemetry"
)

// SimDevices is the device table of the simulated tracking system
var SimDevices = []pose.DeviceClass{
	pose.DeviceClassHMD,
	pose.DeviceClassController,
	pose.DeviceClassController,
	pose.DeviceClassGenericTracker,
}

type TelemetryOptions struct {
	// Record is a capture file, empty to not record
	Record string
	Out    io.Writer
}

// StartTelemetryServer prints every datagram to opts.Out until ctx is done
func StartTelemetryServer(ctx context.Context, cfg *config.Config, opts TelemetryOptions) error {
	m := metrics.New()
	sinks := []telemetry.Sink{telemetry.NewPrintSink(opts.Out)}
	if opts.Record != "" {
		recorder, err := telemetry.NewRecorder(opts.Record)
		if err != nil {
			return err
		}
		defer recorder.Close()
		sinks = append(sinks, recorder)
	}

	s := telemetry.NewServer(cfg.TelemetryConfig, sinks...)
	s.SetMetrics(m)
	if err := s.Listen(); err != nil {
		return err
	}
	if cfg.TelemetryConfig.MetricsAddress != "" {
		go func() {
			if err := serveMetrics(ctx, cfg.TelemetryConfig.MetricsAddress, m); err != nil {
				log.Error("Metrics server failed: %s", err)
			}
		}()
	}
	return s.Run(ctx)
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) error {
	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler()).Methods("GET")
	httpServer := &http.Server{
		Handler: handlers.LoggingHandler(log.Writer(), router),
		Addr:    addr,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), scene.ShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	log.Info("Serving metrics on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartSceneServer runs the tick loop and its API until ctx is done or one of
// them fails
func StartSceneServer(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	errChan := make(chan error, 2)

	var source pose.TrackingSystem
	switch cfg.SceneConfig.Source {
	case config.PoseSourceTelemetry:
		driver := pose.NewDriverSource()
		receiver := telemetry.NewServer(cfg.TelemetryConfig, driver)
		receiver.SetMetrics(m)
		if err := receiver.Listen(); err != nil {
			return err
		}
		go func() { errChan <- receiver.Run(ctx) }()
		source = driver
	default:
		source = pose.NewSimSource(SimDevices, cfg.SceneConfig.SimInvalidTicks)
	}

	room := scene.NewRoom()
	go room.Run(ctx)
	publisher := scene.NewPublisher(room)

	sceneServer, err := scene.NewSceneServer(cfg, source, publisher)
	if err != nil {
		return err
	}
	sceneServer.SetMetrics(m)

	api := scene.NewApiServer(ctx, cfg.SceneConfig, publisher, room, m)
	go func() { errChan <- api.Run() }()

	done := make(chan error, 1)
	go func() { done <- sceneServer.Run(ctx) }()

	select {
	case err = <-errChan:
		if err != nil {
			cancel()
			<-done
			return err
		}
		return <-done
	case err = <-done:
		return err
	}
}
