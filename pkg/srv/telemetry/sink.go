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
	"fmt"
	"io"
	"net"
	"time"

	"github.com/simpletrackers/go-tracker/pkg/layers"
)

// Sample is a decoded datagram together with where and when it arrived
type Sample struct {
	Packet    *layers.TelemetryPacket
	Addr      *net.UDPAddr
	Timestamp time.Time
}

// Sink consumes receiver output. Calls come from the receive loop goroutine
// in arrival order, one datagram at a time.
type Sink interface {
	Sample(sample Sample)
	SizeMismatch(addr *net.UDPAddr, actual, expected int)
}

// PrintSink writes one diagnostic line per datagram
type PrintSink struct {
	out io.Writer
}

func NewPrintSink(out io.Writer) *PrintSink {
	return &PrintSink{out: out}
}

func (s *PrintSink) Sample(sample Sample) {
	fmt.Fprintln(s.out, sample.Packet.String())
}

func (s *PrintSink) SizeMismatch(addr *net.UDPAddr, actual, expected int) {
	fmt.Fprintln(s.out, layers.ErrInvalidLength{Actual: actual, Expected: expected}.Error())
}
