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

package srv

import (
	"errors"
	"net"
	"time"

	"github.com/google/gopacket"
)

const (
	// PollInterval bounds how long a blocking read waits before the loop looks at its context again
	PollInterval = 100 * time.Millisecond
)

// UDPSocket is the part of *net.UDPConn the servers use. Tests substitute fakes.
type UDPSocket interface {
	ReadFromUDP(b []byte) (int, *net.UDPAddr, error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
	Close() error
}

var _ UDPSocket = &net.UDPConn{}

// NewPacket copies data into a packet decoded from firstLayer. The sender
// address travels in AncillaryData.
func NewPacket(data []byte, addr *net.UDPAddr, firstLayer gopacket.Decoder) gopacket.Packet {
	packet := gopacket.NewPacket(data, firstLayer, gopacket.Default)
	ci := &packet.Metadata().CaptureInfo
	ci.Timestamp = time.Now()
	ci.CaptureLength = len(data)
	ci.Length = len(data)
	ci.AncillaryData = []interface{}{addr}
	return packet
}

// GetAddrPort returns the UDPAddr of the device that sent the packet
func GetAddrPort(packet gopacket.Packet) (*net.UDPAddr, error) {
	meta := packet.Metadata()
	if len(meta.CaptureInfo.AncillaryData) >= 1 {
		udpAddr, ok := meta.CaptureInfo.AncillaryData[0].(*net.UDPAddr)
		if !ok || udpAddr == nil {
			return nil, ErrGetAddr{}
		}
		return udpAddr, nil
	}
	return nil, ErrGetAddr{}
}

// IsTimeout reports read deadline expiry
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsClosed reports a socket that can not be read any more
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
