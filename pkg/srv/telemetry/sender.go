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
	"math"
	"net"
	"time"

	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/layers"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/srv"
)

const (
	// Gravity is the acceleration reported by a tracker at rest
	Gravity = 9.8
	// SyntheticTurnRate is the yaw rate of synthetic packets in radians per second
	SyntheticTurnRate = math.Pi / 2
)

// SyntheticPacket returns the sample of a tracker at rest, flat, yawing at
// SyntheticTurnRate around the IMU z axis, elapsed after start
func SyntheticPacket(trackerID uint8, elapsed time.Duration) *layers.TelemetryPacket {
	half := SyntheticTurnRate * elapsed.Seconds() / 2
	return &layers.TelemetryPacket{
		W:         float32(math.Cos(half)),
		Z:         float32(math.Sin(half)),
		Az:        Gravity,
		TrackerID: trackerID,
	}
}

// Sender plays the tracker side of the protocol
type Sender struct {
	target    *net.UDPAddr
	rate      float64
	trackerID uint8
	count     int
}

// NewSender sends count packets at rate Hz to target, count 0 means until cancelled.
// Failed writes still count.
func NewSender(target string, rate float64, trackerID uint8, count int) (*Sender, error) {
	if !(rate > 0) || time.Duration(float64(time.Second)/rate) <= 0 {
		return nil, config.ErrInvalidConfig{Field: "rate", What: "must be positive with an interval of at least 1ns"}
	}
	uaddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, err
	}
	return &Sender{
		target:    uaddr,
		rate:      rate,
		trackerID: trackerID,
		count:     count,
	}, nil
}

func (s *Sender) Run(ctx context.Context) error {
	conn, err := net.DialUDP("udp", nil, s.target)
	if err != nil {
		return ErrTransport{Err: err}
	}
	defer conn.Close()

	log.Info("Sending telemetry to %s rate: %.1f Hz tracker: %d", s.target, s.rate, s.trackerID)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.rate))
	defer ticker.Stop()

	start := time.Now()
	for sent := 0; ; {
		packet := SyntheticPacket(s.trackerID, time.Since(start))
		if _, err := conn.Write(layers.EncodeTelemetry(packet)); err != nil {
			if srv.IsClosed(err) {
				return ErrTransport{Err: err}
			}
			// refused writes come back while the receiver is down
			log.Warning("Error while sending datagram: %s", err)
		} else {
			log.Debug("Sent %s", packet)
		}
		sent++
		if s.count > 0 && sent >= s.count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
