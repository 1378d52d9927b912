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

// Package calibration snaps a raw tracker position onto the skeleton once and
// derives wrist and fingertip positions from then on.
package calibration

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/pose"
	"github.com/simpletrackers/go-tracker/pkg/skeleton"
)

// Forward is the pointing direction of the hand in tracker coordinates
var Forward = mgl64.Vec3{0, 0, -1}

type Config struct {
	Shoulder   mgl64.Vec3
	HandOffset mgl64.Vec3
	TipLength  float64
	Forward    mgl64.Vec3
}

func DefaultConfig() Config {
	return Config{
		Shoulder:   skeleton.RightShoulder.Position,
		HandOffset: mgl64.Vec3(config.DefaultHandOffset),
		TipLength:  config.DefaultTipLength,
		Forward:    Forward,
	}
}

// NewConfig takes hand offset and tip length from cfg, the rest from DefaultConfig
func NewConfig(cfg *config.CalibrationConfig) Config {
	c := DefaultConfig()
	c.HandOffset = mgl64.Vec3(cfg.HandOffset)
	c.TipLength = cfg.TipLength
	return c
}

// State is uncalibrated until the first valid pose. Offset never changes after that.
type State struct {
	Calibrated bool       `json:"calibrated"`
	Offset     mgl64.Vec3 `json:"offset"`
}

// Result is what one valid tick yields
type Result struct {
	Raw       mgl64.Vec3
	Wrist     mgl64.Vec3
	Fingertip mgl64.Vec3
	Direction mgl64.Vec3
	Rotation  mgl64.Mat3
}

// Engine is not safe for concurrent use
type Engine struct {
	cfg   Config
	state State
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) State() State {
	return e.state
}

// Tick consumes one pose. Invalid poses change nothing and return false.
// The first valid pose fixes the offset so that its wrist lands at
// Shoulder + HandOffset.
func (e *Engine) Tick(p pose.Pose) (Result, bool) {
	if !p.Valid {
		return Result{}, false
	}
	raw := p.Position()
	rotation := p.Rotation()

	if !e.state.Calibrated {
		target := e.cfg.Shoulder.Add(e.cfg.HandOffset)
		e.state = State{Calibrated: true, Offset: target.Sub(raw)}
		log.Info("Calibrated, offset: %.3f %.3f %.3f", e.state.Offset.X(), e.state.Offset.Y(), e.state.Offset.Z())
	}

	wrist := raw.Add(e.state.Offset)
	direction := rotation.Mul3x1(e.cfg.Forward)
	return Result{
		Raw:       raw,
		Wrist:     wrist,
		Fingertip: wrist.Add(direction.Mul(e.cfg.TipLength)),
		Direction: direction,
		Rotation:  rotation,
	}, true
}
