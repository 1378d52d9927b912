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

package layers

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// TelemetryLayerNum identifies the layer
	TelemetryLayerNum = 2000
	// TelemetryPacketSize is the fixed size of a tracker datagram:
	// seven little-endian float32 fields and one tracker id byte
	TelemetryPacketSize = 29
)

// TelemetryPacket is one orientation/acceleration sample sent by a tracker.
// The quaternion is not required to be unit length and is never normalized here.
type TelemetryPacket struct {
	W, X, Y, Z float32 // quaternion, scalar first
	Ax, Ay, Az float32 // acceleration
	TrackerID  uint8
}

// Serialize writes the packet to buf which must be at least TelemetryPacketSize long
func (p *TelemetryPacket) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.W))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.X))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.Y))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.Z))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(p.Ax))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(p.Ay))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(p.Az))
	buf[28] = p.TrackerID
}

func (p *TelemetryPacket) String() string {
	return fmt.Sprintf("[Tracker %d] Quat: (%.2f, %.2f, %.2f, %.2f) Accel: (%.2f, %.2f, %.2f)",
		p.TrackerID, p.W, p.X, p.Y, p.Z, p.Ax, p.Ay, p.Az)
}

func float32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset : offset+4]))
}

// DecodeTelemetry decodes a datagram. Length is the only thing checked.
func DecodeTelemetry(data []byte) (*TelemetryPacket, error) {
	if len(data) != TelemetryPacketSize {
		return nil, ErrInvalidLength{Actual: len(data), Expected: TelemetryPacketSize}
	}
	return &TelemetryPacket{
		W:         float32At(data, 0),
		X:         float32At(data, 4),
		Y:         float32At(data, 8),
		Z:         float32At(data, 12),
		Ax:        float32At(data, 16),
		Ay:        float32At(data, 20),
		Az:        float32At(data, 24),
		TrackerID: data[28],
	}, nil
}

// EncodeTelemetry returns exactly TelemetryPacketSize bytes
func EncodeTelemetry(p *TelemetryPacket) []byte {
	buf := make([]byte, TelemetryPacketSize)
	p.Serialize(buf)
	return buf
}

type TelemetryLayer struct {
	layers.BaseLayer
	TelemetryPacket
}

var TelemetryLayerType = gopacket.RegisterLayerType(TelemetryLayerNum,
	gopacket.LayerTypeMetadata{Name: "TelemetryLayerType", Decoder: gopacket.DecodeFunc(decodeTelemetryLayer)})

// LayerType returns the type of the telemetry layer in the layer catalog
func (t *TelemetryLayer) LayerType() gopacket.LayerType {
	return TelemetryLayerType
}

func (t *TelemetryLayer) CanDecode() gopacket.LayerClass {
	return TelemetryLayerType
}

// NextLayerType returns LayerTypeZero, telemetry datagrams carry no payload
func (t *TelemetryLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

// DecodeFromBytes attempts to decode the byte slice as a telemetry datagram
func (t *TelemetryLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	p, err := DecodeTelemetry(data)
	if err != nil {
		if len(data) < TelemetryPacketSize {
			df.SetTruncated()
		}
		return err
	}
	t.BaseLayer = layers.BaseLayer{
		Contents: data,
		Payload:  []byte{},
	}
	t.TelemetryPacket = *p
	return nil
}

// SerializeTo serializes the layer into bytes and writes the bytes to the SerializeBuffer
func (t *TelemetryLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(TelemetryPacketSize)
	if err != nil {
		return err
	}
	t.Serialize(bytes)
	return nil
}

func decodeTelemetryLayer(data []byte, p gopacket.PacketBuilder) error {
	t := &TelemetryLayer{}
	if err := t.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(t)
	return nil
}
