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

package pose

import (
	"net"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simpletrackers/go-tracker/pkg/layers"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/srv/telemetry"
)

const (
	// DriverDevice is the only index DriverSource answers for
	DriverDevice DeviceIndex = 0
)

// DriverPosition is where a telemetry driven tracker is placed. An IMU alone
// can not track position.
var DriverPosition = mgl64.Vec3{0, 1, 0}

// DriverSource turns telemetry packets into poses of a single generic tracker.
// It is a telemetry.Sink written by the receive loop and a Source read by the
// scene loop.
type DriverSource struct {
	mu       sync.Mutex
	rotation mgl64.Quat
	valid    bool
	last     uint8
}

var _ telemetry.Sink = &DriverSource{}
var _ TrackingSystem = &DriverSource{}

func NewDriverSource() *DriverSource {
	return &DriverSource{rotation: mgl64.QuatIdent()}
}

// DriverRotation converts an IMU quaternion (Z up) to the tracking frame (Y up)
func DriverRotation(p *layers.TelemetryPacket) mgl64.Quat {
	return mgl64.Quat{
		W: float64(p.W),
		V: mgl64.Vec3{float64(p.X), float64(p.Z), -float64(p.Y)},
	}
}

func (d *DriverSource) Sample(sample telemetry.Sample) {
	rotation := DriverRotation(sample.Packet)
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.valid || d.last != sample.Packet.TrackerID {
		log.Info("Driving pose from tracker %d at %s", sample.Packet.TrackerID, sample.Addr)
	}
	d.rotation = rotation
	d.valid = true
	d.last = sample.Packet.TrackerID
}

func (d *DriverSource) SizeMismatch(addr *net.UDPAddr, actual, expected int) {
	log.Debug("Driver ignoring %d byte datagram from %s", actual, addr)
}

func (d *DriverSource) DeviceClass(device DeviceIndex) DeviceClass {
	if device == DriverDevice {
		return DeviceClassGenericTracker
	}
	return DeviceClassInvalid
}

func (d *DriverSource) Pose(device DeviceIndex) Pose {
	if device != DriverDevice {
		return Pose{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.valid {
		return Pose{}
	}
	return NewPose(d.rotation, DriverPosition)
}
