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

package skeleton

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTopology(t *testing.T) {
	joints := StaticJoints()
	require.Len(t, joints, 13)
	names := make([]string, len(joints))
	for i, j := range joints {
		names[i] = j.Name
	}
	want := []string{"head", "neck", "hip", "r_shoulder", "l_shoulder", "l_elbow", "l_hand",
		"r_hip", "l_hip", "r_knee", "l_knee", "r_foot", "l_foot"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("joint order mismatch (-want +got):\n%s", diff)
	}

	bones := StaticBones()
	require.Len(t, bones, 12)
	assert.Equal(t, Bone{Head, Neck}, bones[0])
	assert.Equal(t, Bone{LeftKnee, LeftFoot}, bones[11])
}

func TestInitialGeometryIsStatic(t *testing.T) {
	g := New().Geometry()
	assert.Len(t, g.Segments, 24)
	assert.Empty(t, g.Markers)
	assert.Equal(t, Head.Position, g.Segments[0])
	assert.Equal(t, Neck.Position, g.Segments[1])
}

func TestUpdate(t *testing.T) {
	m := New()
	wrist := mgl64.Vec3{0.3, 1.0, 0.2}
	tip := mgl64.Vec3{0.3, 1.0, 0.05}
	m.Update(wrist, tip)

	g := m.Geometry()
	require.Len(t, g.Segments, 28)
	if diff := cmp.Diff([]mgl64.Vec3{RightShoulder.Position, wrist, wrist, tip}, g.Segments[24:]); diff != "" {
		t.Errorf("dynamic segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []mgl64.Vec3{wrist}, g.Markers)

	// a second update replaces the arm rather than growing it
	m.Update(tip, wrist)
	g = m.Geometry()
	require.Len(t, g.Segments, 28)
	assert.Equal(t, tip, g.Segments[25])
	assert.Equal(t, []mgl64.Vec3{tip}, g.Markers)
}

func TestGeometryIsACopy(t *testing.T) {
	m := New()
	m.Update(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 2, 2})
	g := m.Geometry()
	g.Segments[0] = mgl64.Vec3{9, 9, 9}
	g.Markers[0] = mgl64.Vec3{9, 9, 9}
	g.Joints[0].Name = "changed"

	fresh := m.Geometry()
	assert.Equal(t, Head.Position, fresh.Segments[0])
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, fresh.Markers[0])
	assert.Equal(t, "head", fresh.Joints[0].Name)
	assert.Equal(t, "head", StaticJoints()[0].Name)
}

func TestAxis(t *testing.T) {
	rotation := mgl64.Rotate3DY(math.Pi / 2)
	axis := Axis(rotation, 0.5)
	require.Len(t, axis, 6)
	for i := 0; i < 6; i += 2 {
		assert.Equal(t, mgl64.Vec3{}, axis[i])
		assert.InDelta(t, 0.5, axis[i+1].Len(), 1e-9)
	}
	assertVec3(t, mgl64.Vec3{0, 0, -0.5}, axis[1])
	assertVec3(t, mgl64.Vec3{0, 0.5, 0}, axis[3])
}

func assertVec3(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-9, got)
}
