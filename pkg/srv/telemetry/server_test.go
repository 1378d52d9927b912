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
	"bytes"
	"context"
	"errors"
	"math"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/layers"
	"github.com/simpletrackers/go-tracker/pkg/log"
)

func init() {
	log.Init(&bytes.Buffer{}, "error")
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type datagram struct {
	data []byte
	err  error
}

// fakeSocket replays datagrams then calls drained once and keeps timing out
type fakeSocket struct {
	datagrams []datagram
	drained   func()
	closed    bool
	reads     int
}

var peer = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 7), Port: 4210}

func (s *fakeSocket) ReadFromUDP(b []byte) (int, *net.UDPAddr, error) {
	if s.closed {
		return 0, nil, net.ErrClosed
	}
	s.reads++
	if len(s.datagrams) == 0 {
		if s.drained != nil {
			s.drained()
			s.drained = nil
		}
		return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: timeoutError{}}
	}
	d := s.datagrams[0]
	s.datagrams = s.datagrams[1:]
	if d.err != nil {
		return 0, nil, d.err
	}
	return copy(b, d.data), peer, nil
}

func (s *fakeSocket) SetReadDeadline(time.Time) error { return nil }
func (s *fakeSocket) LocalAddr() net.Addr             { return &net.UDPAddr{IP: net.IPv4zero, Port: 8080} }
func (s *fakeSocket) Close() error {
	s.closed = true
	return nil
}

type mismatch struct {
	actual, expected int
}

type recordingSink struct {
	samples    []Sample
	mismatches []mismatch
}

func (s *recordingSink) Sample(sample Sample) {
	s.samples = append(s.samples, sample)
}

func (s *recordingSink) SizeMismatch(addr *net.UDPAddr, actual, expected int) {
	s.mismatches = append(s.mismatches, mismatch{actual, expected})
}

func packet(id uint8) []byte {
	return layers.EncodeTelemetry(&layers.TelemetryPacket{W: 1, Az: 9.8, TrackerID: id})
}

func serve(t *testing.T, socket *fakeSocket, sinks ...Sink) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	socket.drained = cancel
	s := NewServer(config.NewDefaultConfig().TelemetryConfig, sinks...)
	return s.Serve(ctx, socket)
}

func TestServeSizeMismatchKeepsGoing(t *testing.T) {
	sink := &recordingSink{}
	socket := &fakeSocket{datagrams: []datagram{
		{data: make([]byte, 10)},
		{data: packet(3)},
	}}

	require.NoError(t, serve(t, socket, sink))
	assert.Equal(t, []mismatch{{10, 29}}, sink.mismatches)
	require.Len(t, sink.samples, 1)
	assert.Equal(t, uint8(3), sink.samples[0].Packet.TrackerID)
	assert.Equal(t, peer, sink.samples[0].Addr)
	assert.False(t, sink.samples[0].Timestamp.IsZero())
}

func TestServeArrivalOrder(t *testing.T) {
	sink := &recordingSink{}
	socket := &fakeSocket{}
	for id := uint8(0); id < 20; id++ {
		socket.datagrams = append(socket.datagrams, datagram{data: packet(id)})
	}

	require.NoError(t, serve(t, socket, sink))
	require.Len(t, sink.samples, 20)
	for i, sample := range sink.samples {
		assert.Equal(t, uint8(i), sample.Packet.TrackerID)
	}
}

func TestServeSamplesDoNotAlias(t *testing.T) {
	sink := &recordingSink{}
	socket := &fakeSocket{datagrams: []datagram{{data: packet(1)}, {data: packet(2)}}}

	require.NoError(t, serve(t, socket, sink))
	require.Len(t, sink.samples, 2)
	assert.Equal(t, uint8(1), sink.samples[0].Packet.TrackerID)
	assert.Equal(t, uint8(2), sink.samples[1].Packet.TrackerID)
}

func TestServeFansOutToEverySink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	socket := &fakeSocket{datagrams: []datagram{{data: packet(5)}, {data: []byte{}}}}

	require.NoError(t, serve(t, socket, a, b))
	for _, sink := range []*recordingSink{a, b} {
		assert.Len(t, sink.samples, 1)
		assert.Equal(t, []mismatch{{0, 29}}, sink.mismatches)
	}
}

func TestServeTransientErrorContinues(t *testing.T) {
	sink := &recordingSink{}
	socket := &fakeSocket{datagrams: []datagram{
		{err: errors.New("connection refused")},
		{data: packet(9)},
	}}

	require.NoError(t, serve(t, socket, sink))
	assert.Len(t, sink.samples, 1)
}

func TestServeClosedSocketIsFatal(t *testing.T) {
	socket := &fakeSocket{closed: true}
	s := NewServer(config.NewDefaultConfig().TelemetryConfig)

	err := s.Serve(context.Background(), socket)
	var transportErr ErrTransport
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, net.ErrClosed))
}

func TestServeCancelledReturnsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	socket := &fakeSocket{datagrams: []datagram{{data: packet(1)}}}
	s := NewServer(config.NewDefaultConfig().TelemetryConfig)

	require.NoError(t, s.Serve(ctx, socket))
	assert.Equal(t, 0, socket.reads)
}

func TestPrintSink(t *testing.T) {
	out := &bytes.Buffer{}
	socket := &fakeSocket{datagrams: []datagram{
		{data: packet(3)},
		{data: make([]byte, 10)},
	}}

	require.NoError(t, serve(t, socket, NewPrintSink(out)))
	assert.Equal(t,
		"[Tracker 3] Quat: (1.00, 0.00, 0.00, 0.00) Accel: (0.00, 0.00, 9.80)\n"+
			"Received packet of unexpected size: 10 bytes (Expected 29)\n",
		out.String())
}

func TestRunBeforeListen(t *testing.T) {
	s := NewServer(config.NewDefaultConfig().TelemetryConfig)
	assert.Equal(t, ErrNotListening{}, s.Run(context.Background()))
	assert.Nil(t, s.LocalAddr())
}

func TestListenPortInUse(t *testing.T) {
	taken, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer taken.Close()

	cfg := &config.TelemetryConfig{Address: "127.0.0.1", Port: taken.LocalAddr().(*net.UDPAddr).Port}
	err = NewServer(cfg).Listen()
	var bindErr ErrBind
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, cfg.Port, bindErr.Port)
	assert.Contains(t, err.Error(), "127.0.0.1")
}

type syncSink struct {
	sync.Mutex
	recordingSink
	got chan struct{}
}

func (s *syncSink) Sample(sample Sample) {
	s.Lock()
	s.recordingSink.Sample(sample)
	s.Unlock()
	s.got <- struct{}{}
}

func TestSenderToListener(t *testing.T) {
	sink := &syncSink{got: make(chan struct{}, 10)}
	s := NewServer(&config.TelemetryConfig{Address: "127.0.0.1", Port: 0}, sink)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	sender, err := NewSender(s.LocalAddr().String(), 200, 4, 3)
	require.NoError(t, err)
	require.NoError(t, sender.Run(context.Background()))

	for i := 0; i < 3; i++ {
		select {
		case <-sink.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of 3 packets", i)
		}
	}
	cancel()
	require.NoError(t, <-done)

	sink.Lock()
	defer sink.Unlock()
	for _, sample := range sink.samples {
		assert.Equal(t, uint8(4), sample.Packet.TrackerID)
		assert.InDelta(t, 9.8, sample.Packet.Az, 1e-6)
	}
}

func closedPort(t *testing.T) string {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())
	return addr
}

func TestSenderWithoutListenerKeepsSending(t *testing.T) {
	sender, err := NewSender(closedPort(t), 100, 1, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	require.NoError(t, sender.Run(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestSenderCountIncludesFailedWrites(t *testing.T) {
	sender, err := NewSender(closedPort(t), 200, 1, 5)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- sender.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sender did not stop after 5 packets")
	}
}

func TestNewSenderRejectsBadRate(t *testing.T) {
	for _, rate := range []float64{0, -5, math.NaN(), 2e9} {
		_, err := NewSender("127.0.0.1:8080", rate, 1, 0)
		assert.ErrorAs(t, err, &config.ErrInvalidConfig{}, "rate %v", rate)
	}
}

func TestSyntheticPacket(t *testing.T) {
	p := SyntheticPacket(2, time.Second)
	norm := p.W*p.W + p.X*p.X + p.Y*p.Y + p.Z*p.Z
	assert.InDelta(t, 1.0, norm, 1e-6)
	assert.InDelta(t, 0.7071, p.W, 1e-4)
	assert.InDelta(t, 0.7071, p.Z, 1e-4)
	assert.Equal(t, uint8(2), p.TrackerID)
}

func TestRecorderDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.db")
	rec, err := NewRecorder(path)
	require.NoError(t, err)

	ts := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	for id := uint8(1); id <= 3; id++ {
		rec.Sample(Sample{
			Packet:    &layers.TelemetryPacket{W: 1, Ax: 0.5, Az: 9.8, TrackerID: id},
			Addr:      peer,
			Timestamp: ts,
		})
	}
	rec.SizeMismatch(peer, 10, 29)
	run := rec.Run()
	require.NoError(t, rec.Close())

	var records []Record
	require.NoError(t, Dump(path, func(r string, record Record) error {
		assert.Equal(t, run, r)
		records = append(records, record)
		return nil
	}))
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, uint64(i+1), record.Seq)
		assert.Equal(t, uint8(i+1), record.TrackerID)
		assert.Equal(t, [4]float32{1, 0, 0, 0}, record.Quat)
		assert.Equal(t, [3]float32{0.5, 0, 9.8}, record.Accel)
		assert.Equal(t, peer.String(), record.Addr)
		assert.True(t, ts.Equal(record.Timestamp))
		assert.Equal(t, layers.TelemetryPacket{W: 1, Ax: 0.5, Az: 9.8, TrackerID: uint8(i + 1)}, *record.Packet())
	}
}

func TestRecorderRunsGetOwnBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.db")
	runs := map[string]int{}
	for i := 0; i < 2; i++ {
		rec, err := NewRecorder(path)
		require.NoError(t, err)
		rec.Sample(Sample{Packet: &layers.TelemetryPacket{TrackerID: 1}, Timestamp: time.Now()})
		require.NoError(t, rec.Close())
	}
	require.NoError(t, Dump(path, func(run string, record Record) error {
		runs[run]++
		return nil
	}))
	assert.Len(t, runs, 2)
}
