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

// go-tracker scene API
//
// Latest skeleton geometry and calibration state for renderers
//
//     Schemes: http
//     Host: localhost:8003
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//
// swagger:meta
package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/metrics"
)

const (
	ShutdownTimeout = 5 * time.Second
)

type ApiServer struct {
	context.Context
	*config.SceneConfig
	*mux.Router
	publisher *Publisher
	room      *Room
	metrics   *metrics.Metrics
}

func NewApiServer(ctx context.Context, cfg *config.SceneConfig, publisher *Publisher, room *Room, m *metrics.Metrics) *ApiServer {
	log.Info("Initializing API server with address: %s port: %d", cfg.ApiAddress, cfg.ApiPort)
	s := &ApiServer{
		Context:     ctx,
		SceneConfig: cfg,
		publisher:   publisher,
		room:        room,
		metrics:     m,
	}
	s.configureRouter()
	return s
}

// Handler is the router wrapped in CORS and access logging
func (s *ApiServer) Handler() http.Handler {
	return handlers.CORS(handlers.AllowedMethods([]string{"GET"}))(handlers.LoggingHandler(log.Writer(), s.Router))
}

// Run serves until the context is done
func (s *ApiServer) Run() error {
	addr := net.JoinHostPort(s.ApiAddress, fmt.Sprint(s.ApiPort))
	log.Info("Starting API server: %s", addr)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    addr,
	}
	go func() {
		<-s.Context.Done()
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(ctx)
	}()
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Success response
// swagger:response okResp
type RespOk struct {
	// in:body
	Body struct {
		// HTTP status code 200 - OK
		Code int `json:"code"`
	}
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /skeleton skeleton getSkeleton
	// ---
	// summary: Return the latest skeleton geometry
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	subRouter.HandleFunc("/skeleton", s.handleSkeleton()).Methods("GET")
	// swagger:operation GET /calibration calibration getCalibration
	// ---
	// summary: Return whether the tracker is calibrated and its offset
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	subRouter.HandleFunc("/calibration", s.handleCalibration()).Methods("GET")
	subRouter.HandleFunc("/status", s.handleStatus()).Methods("GET")
	subRouter.Handle("/stream", s.room).Methods("GET")
	s.Router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func (s *ApiServer) handleSkeleton() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling skeleton request")
		writeJSON(w, s.publisher.Geometry())
	}
}

func (s *ApiServer) handleCalibration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling calibration request")
		writeJSON(w, s.publisher.Calibration())
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling status request")
		writeJSON(w, s.publisher.Status())
	}
}
