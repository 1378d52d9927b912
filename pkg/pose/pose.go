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

// Package pose wraps a tracking system: device enumeration and per-device transforms.
package pose

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxTrackedDeviceCount bounds device indices, 0..MaxTrackedDeviceCount-1
	MaxTrackedDeviceCount = 64
)

type DeviceIndex uint32

type DeviceClass int

const (
	DeviceClassInvalid DeviceClass = iota
	DeviceClassHMD
	DeviceClassController
	DeviceClassGenericTracker
	DeviceClassTrackingReference
)

var deviceClassNames = map[DeviceClass]string{
	DeviceClassInvalid:           "invalid",
	DeviceClassHMD:               "hmd",
	DeviceClassController:        "controller",
	DeviceClassGenericTracker:    "generic_tracker",
	DeviceClassTrackingReference: "tracking_reference",
}

func (c DeviceClass) String() string {
	if name, ok := deviceClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("DeviceClass(%d)", int(c))
}

func ParseDeviceClass(s string) (DeviceClass, error) {
	for class, name := range deviceClassNames {
		if class != DeviceClassInvalid && name == strings.ToLower(strings.TrimSpace(s)) {
			return class, nil
		}
	}
	return DeviceClassInvalid, ErrUnknownDeviceClass{Name: s}
}

func ParseDeviceClasses(names []string) ([]DeviceClass, error) {
	classes := make([]DeviceClass, 0, len(names))
	for _, name := range names {
		class, err := ParseDeviceClass(name)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// Pose is the device-to-world transform of one device at one instant.
// Transform is meaningless when Valid is false.
type Pose struct {
	Transform mgl64.Mat4
	Valid     bool
}

// NewPose returns a valid pose. rotation is normalized.
func NewPose(rotation mgl64.Quat, position mgl64.Vec3) Pose {
	transform := rotation.Normalize().Mat4()
	transform.SetCol(3, position.Vec4(1))
	return Pose{Transform: transform, Valid: true}
}

// Position is the translation column
func (p Pose) Position() mgl64.Vec3 {
	return p.Transform.Col(3).Vec3()
}

// Rotation is the upper-left 3x3 block
func (p Pose) Rotation() mgl64.Mat3 {
	return p.Transform.Mat3()
}

// Source returns the current pose of a device. A device without a current
// fix yields a Pose with Valid false, never an error.
type Source interface {
	Pose(device DeviceIndex) Pose
}

// Enumerator reports the class of the device at an index
type Enumerator interface {
	DeviceClass(device DeviceIndex) DeviceClass
}

// TrackingSystem is what the scene needs from a tracking backend
type TrackingSystem interface {
	Source
	Enumerator
}

// Discover scans all device indices once and returns the first device whose
// class is one of classes.
func Discover(e Enumerator, classes ...DeviceClass) (DeviceIndex, error) {
	for i := DeviceIndex(0); i < MaxTrackedDeviceCount; i++ {
		class := e.DeviceClass(i)
		for _, c := range classes {
			if class == c {
				return i, nil
			}
		}
	}
	return 0, ErrDeviceNotFound{Classes: classes}
}
