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

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"

	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/layers"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/metrics"
	"github.com/simpletrackers/go-tracker/pkg/srv"
)

type Server struct {
	cfg     *config.TelemetryConfig
	sinks   []Sink
	metrics *metrics.Metrics
	conn    srv.UDPSocket
}

func NewServer(cfg *config.TelemetryConfig, sinks ...Sink) *Server {
	log.Info("Initializing telemetry server with address: %s port: %d", cfg.Address, cfg.Port)
	return &Server{
		cfg:     cfg,
		sinks:   sinks,
		metrics: metrics.New(),
	}
}

func (s *Server) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Listen binds the UDP socket. Failures carry the address and port.
func (s *Server) Listen() error {
	uaddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(s.cfg.Address, fmt.Sprint(s.cfg.Port)))
	if err != nil {
		return ErrBind{Address: s.cfg.Address, Port: s.cfg.Port, Err: err}
	}
	conn, err := net.ListenUDP("udp", uaddr)
	if err != nil {
		return ErrBind{Address: s.cfg.Address, Port: s.cfg.Port, Err: err}
	}
	log.Info("Listening for telemetry on %s", conn.LocalAddr())
	s.conn = conn
	return nil
}

// LocalAddr is nil before Listen
func (s *Server) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Run receives on the socket bound by Listen and closes it on return
func (s *Server) Run(ctx context.Context) error {
	if s.conn == nil {
		return ErrNotListening{}
	}
	defer s.conn.Close()
	return s.Serve(ctx, s.conn)
}

// Serve reads datagrams from conn until ctx is done. Every datagram is decoded
// and handed to the sinks before the next read. Returns nil on cancellation.
func (s *Server) Serve(ctx context.Context, conn srv.UDPSocket) error {
	buffer := make([]byte, config.ReceiveBufferSize)
	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping telemetry server")
			return nil
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(srv.PollInterval)); err != nil {
			if srv.IsClosed(err) {
				s.metrics.TransportError()
				return ErrTransport{Err: err}
			}
			log.Warning("Error while setting read deadline: %s", err)
		}

		length, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if srv.IsTimeout(err) {
				continue
			}
			s.metrics.TransportError()
			if srv.IsClosed(err) {
				log.Error("Telemetry socket closed: %s", err)
				return ErrTransport{Err: err}
			}
			log.Error("Error while receiving datagram: %s", err)
			continue
		}
		s.metrics.DatagramReceived()
		s.handle(buffer[:length], addr)
	}
}

func (s *Server) handle(data []byte, addr *net.UDPAddr) {
	log.Debug("Received %d bytes from %s", len(data), addr)
	s.dispatch(srv.NewPacket(data, addr, layers.TelemetryLayerType))
}

// dispatch reports one decoded packet, or its size mismatch, to every sink
func (s *Server) dispatch(packet gopacket.Packet) {
	addr, err := srv.GetAddrPort(packet)
	if err != nil {
		log.Error("%s", err)
		return
	}

	if errLayer := packet.ErrorLayer(); errLayer != nil {
		var lengthErr layers.ErrInvalidLength
		if errors.As(errLayer.Error(), &lengthErr) {
			s.metrics.SizeMismatch()
			for _, sink := range s.sinks {
				sink.SizeMismatch(addr, lengthErr.Actual, lengthErr.Expected)
			}
			return
		}
		log.Error("Error while decoding datagram from %s: %s", addr, errLayer.Error())
		return
	}

	telemetryLayer, ok := packet.Layer(layers.TelemetryLayerType).(*layers.TelemetryLayer)
	if !ok {
		log.Error("Datagram from %s has no telemetry layer", addr)
		return
	}
	sample := Sample{
		Packet:    &telemetryLayer.TelemetryPacket,
		Addr:      addr,
		Timestamp: packet.Metadata().Timestamp,
	}
	s.metrics.PacketDecoded(sample.Packet.TrackerID)
	for _, sink := range s.sinks {
		sink.Sample(sample)
	}
}
