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
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// SimSource is a tracking system without hardware. Devices get their class
// from the table given to NewSimSource. The first invalidTicks Pose calls
// report no fix, the rest follow a smooth arm motion.
type SimSource struct {
	devices      []DeviceClass
	invalidTicks int
	calls        int
	start        time.Time
	now          func() time.Time
}

func NewSimSource(devices []DeviceClass, invalidTicks int) *SimSource {
	return &SimSource{
		devices:      devices,
		invalidTicks: invalidTicks,
		start:        time.Now(),
		now:          time.Now,
	}
}

func (s *SimSource) DeviceClass(device DeviceIndex) DeviceClass {
	if int(device) >= len(s.devices) {
		return DeviceClassInvalid
	}
	return s.devices[device]
}

func (s *SimSource) Pose(device DeviceIndex) Pose {
	if s.DeviceClass(device) == DeviceClassInvalid {
		return Pose{}
	}
	s.calls++
	if s.calls <= s.invalidTicks {
		return Pose{}
	}
	return SimPose(s.now().Sub(s.start))
}

// SimPose is the simulated tracker pose elapsed after start. The tracker sits
// in the room frame around (0.5, 1.1, -0.3) swaying a few centimetres while
// it rolls, pitches and yaws.
func SimPose(elapsed time.Duration) Pose {
	t := elapsed.Seconds()
	roll := mgl64.DegToRad(20 * math.Sin(t))
	pitch := mgl64.DegToRad(15 * math.Cos(t*0.7))
	yaw := mgl64.DegToRad(math.Mod(t*30, 360))
	rotation := mgl64.AnglesToQuat(yaw, pitch, roll, mgl64.YXZ)
	position := mgl64.Vec3{
		0.5 + 0.05*math.Sin(t*0.9),
		1.1 + 0.05*math.Sin(t*1.3),
		-0.3 + 0.05*math.Cos(t*0.9),
	}
	return NewPose(rotation, position)
}
