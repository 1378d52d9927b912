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

package scene

import (
	"encoding/json"
	"sync"

	"github.com/simpletrackers/go-tracker/pkg/calibration"
	"github.com/simpletrackers/go-tracker/pkg/log"
	"github.com/simpletrackers/go-tracker/pkg/pose"
	"github.com/simpletrackers/go-tracker/pkg/skeleton"
)

type Status struct {
	Session    string            `json:"session"`
	Source     string            `json:"source"`
	Device     *pose.DeviceIndex `json:"device"`
	Ticks      uint64            `json:"ticks"`
	Skipped    uint64            `json:"skipped"`
	Calibrated bool              `json:"calibrated"`
}

// Publisher holds the latest snapshots for readers outside the tick loop
type Publisher struct {
	mu          sync.RWMutex
	geometry    skeleton.Geometry
	calibration calibration.State
	status      Status
	room        *Room
}

func NewPublisher(room *Room) *Publisher {
	return &Publisher{room: room}
}

// Publish stores g, which must not be modified afterwards, and pushes it to the room
func (p *Publisher) Publish(g skeleton.Geometry, state calibration.State) {
	p.mu.Lock()
	p.geometry = g
	p.calibration = state
	p.mu.Unlock()

	if p.room == nil {
		return
	}
	msg, err := json.Marshal(g)
	if err != nil {
		log.Error("Error while marshalling geometry: %s", err)
		return
	}
	p.room.Broadcast(msg)
}

func (p *Publisher) SetStatus(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

func (p *Publisher) Geometry() skeleton.Geometry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.geometry
}

func (p *Publisher) Calibration() calibration.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calibration
}

func (p *Publisher) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
