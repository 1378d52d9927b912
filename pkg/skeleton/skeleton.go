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

// Package skeleton holds a fixed stick figure plus an arm that follows the tracker.
package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"
)

type Joint struct {
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
}

// Static joints, metres, Y up
var (
	Head          = Joint{"head", mgl64.Vec3{0, 1.8, 0}}
	Neck          = Joint{"neck", mgl64.Vec3{0, 1.5, 0}}
	Hip           = Joint{"hip", mgl64.Vec3{0, 0.9, 0}}
	RightShoulder = Joint{"r_shoulder", mgl64.Vec3{0.2, 1.4, 0}}
	LeftShoulder  = Joint{"l_shoulder", mgl64.Vec3{-0.2, 1.4, 0}}
	LeftElbow     = Joint{"l_elbow", mgl64.Vec3{-0.25, 1.1, 0}}
	LeftHand      = Joint{"l_hand", mgl64.Vec3{-0.25, 0.8, 0}}
	RightHip      = Joint{"r_hip", mgl64.Vec3{0.15, 0.9, 0}}
	LeftHip       = Joint{"l_hip", mgl64.Vec3{-0.15, 0.9, 0}}
	RightKnee     = Joint{"r_knee", mgl64.Vec3{0.15, 0.5, 0}}
	LeftKnee      = Joint{"l_knee", mgl64.Vec3{-0.15, 0.5, 0}}
	RightFoot     = Joint{"r_foot", mgl64.Vec3{0.15, 0, 0}}
	LeftFoot      = Joint{"l_foot", mgl64.Vec3{-0.15, 0, 0}}
)

// Bone connects two static joints
type Bone struct {
	From, To Joint
}

// StaticJoints returns the joints in their fixed order
func StaticJoints() []Joint {
	return []Joint{
		Head, Neck, Hip,
		RightShoulder, LeftShoulder, LeftElbow, LeftHand,
		RightHip, LeftHip, RightKnee, LeftKnee, RightFoot, LeftFoot,
	}
}

// StaticBones returns the twelve static segments in their fixed order
func StaticBones() []Bone {
	return []Bone{
		{Head, Neck},
		{Neck, Hip},
		{Neck, RightShoulder},
		{Neck, LeftShoulder},
		{LeftShoulder, LeftElbow},
		{LeftElbow, LeftHand},
		{Hip, RightHip},
		{Hip, LeftHip},
		{RightHip, RightKnee},
		{LeftHip, LeftKnee},
		{RightKnee, RightFoot},
		{LeftKnee, LeftFoot},
	}
}

// Geometry is what a renderer draws. Segments and Axis are flat lists of
// endpoint pairs: element 2i and 2i+1 form one line.
type Geometry struct {
	Joints   []Joint      `json:"joints"`
	Segments []mgl64.Vec3 `json:"segments"`
	Markers  []mgl64.Vec3 `json:"markers"`
	Axis     []mgl64.Vec3 `json:"axis,omitempty"`
}

// Model is rebuilt wholesale on every Update. Not safe for concurrent use.
type Model struct {
	joints   []Joint
	static   []mgl64.Vec3
	segments []mgl64.Vec3
	markers  []mgl64.Vec3
}

func New() *Model {
	bones := StaticBones()
	static := make([]mgl64.Vec3, 0, 2*len(bones))
	for _, b := range bones {
		static = append(static, b.From.Position, b.To.Position)
	}
	return &Model{
		joints:   StaticJoints(),
		static:   static,
		segments: static,
	}
}

// Update appends shoulder->wrist and wrist->tip to the static segments and
// marks the wrist
func (m *Model) Update(wrist, tip mgl64.Vec3) {
	segments := make([]mgl64.Vec3, 0, len(m.static)+4)
	segments = append(segments, m.static...)
	segments = append(segments, RightShoulder.Position, wrist, wrist, tip)
	m.segments = segments
	m.markers = []mgl64.Vec3{wrist}
}

// Geometry returns a copy the caller may keep
func (m *Model) Geometry() Geometry {
	return Geometry{
		Joints:   append([]Joint(nil), m.joints...),
		Segments: append([]mgl64.Vec3(nil), m.segments...),
		Markers:  append([]mgl64.Vec3{}, m.markers...),
	}
}

// Axis is the XYZ triad of rotation drawn at the origin, position ignored
func Axis(rotation mgl64.Mat3, length float64) []mgl64.Vec3 {
	var origin mgl64.Vec3
	return []mgl64.Vec3{
		origin, rotation.Col(0).Mul(length),
		origin, rotation.Col(1).Mul(length),
		origin, rotation.Col(2).Mul(length),
	}
}
