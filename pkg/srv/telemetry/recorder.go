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
	"encoding/binary"
	"net"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"github.com/simpletrackers/go-tracker/pkg/layers"
	"github.com/simpletrackers/go-tracker/pkg/log"
)

// Record is the stored form of a Sample
type Record struct {
	Seq       uint64     `json:"seq"`
	Timestamp time.Time  `json:"timestamp"`
	Addr      string     `json:"addr"`
	TrackerID uint8      `json:"tracker_id"`
	Quat      [4]float32 `json:"quat"`
	Accel     [3]float32 `json:"accel"`
}

// Packet rebuilds the decoded packet
func (r Record) Packet() *layers.TelemetryPacket {
	return &layers.TelemetryPacket{
		W:         r.Quat[0],
		X:         r.Quat[1],
		Y:         r.Quat[2],
		Z:         r.Quat[3],
		Ax:        r.Accel[0],
		Ay:        r.Accel[1],
		Az:        r.Accel[2],
		TrackerID: r.TrackerID,
	}
}

// Recorder is a Sink capturing decoded samples into a bbolt file.
// Every recorder gets its own bucket named after a fresh run id.
type Recorder struct {
	db  *bbolt.DB
	run string
	seq uint64
}

func NewRecorder(path string) (*Recorder, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	run := uuid.New().String()
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket([]byte(run))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Recording telemetry to %s run: %s", path, run)
	return &Recorder{db: db, run: run}, nil
}

func (r *Recorder) Run() string {
	return r.run
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

func seqToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (r *Recorder) Sample(sample Sample) {
	r.seq++
	p := sample.Packet
	record := Record{
		Seq:       r.seq,
		Timestamp: sample.Timestamp,
		TrackerID: p.TrackerID,
		Quat:      [4]float32{p.W, p.X, p.Y, p.Z},
		Accel:     [3]float32{p.Ax, p.Ay, p.Az},
	}
	if sample.Addr != nil {
		record.Addr = sample.Addr.String()
	}
	data, err := yaml.Marshal(record)
	if err != nil {
		log.Error("Error while marshalling record %d: %s", r.seq, err)
		return
	}
	if err = r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(r.run))
		if b == nil {
			return ErrBucketNotFound{Name: r.run}
		}
		return b.Put(seqToByte(r.seq), data)
	}); err != nil {
		log.Error("Error while storing record %d: %s", r.seq, err)
	}
}

// SizeMismatch does nothing, only decoded samples are captured
func (r *Recorder) SizeMismatch(addr *net.UDPAddr, actual, expected int) {}

// Dump calls fn for every record of every run in the capture file, runs in
// bucket order and records in sequence order.
func Dump(path string, fn func(run string, record Record) error) error {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return err
	}
	defer db.Close()
	return db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			return b.ForEach(func(k, v []byte) error {
				var record Record
				if err := yaml.Unmarshal(v, &record); err != nil {
					return err
				}
				return fn(string(name), record)
			})
		})
	})
}
