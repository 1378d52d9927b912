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

import "fmt"

// ErrBind is returned by Listen when the socket can not be set up
type ErrBind struct {
	Address string
	Port    int
	Err     error
}

func (e ErrBind) Error() string {
	return fmt.Sprintf("Failed to bind to port %d on %s: %s", e.Port, e.Address, e.Err)
}

func (e ErrBind) Unwrap() error {
	return e.Err
}

// ErrTransport ends the receive loop when the socket becomes unusable
type ErrTransport struct {
	Err error
}

func (e ErrTransport) Error() string {
	return fmt.Sprintf("Telemetry transport failed: %s", e.Err)
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

// ErrNotListening is returned by Run before a successful Listen
type ErrNotListening struct{}

func (e ErrNotListening) Error() string {
	return "Telemetry server is not listening"
}

// ErrBucketNotFound is returned by the capture reader
type ErrBucketNotFound struct {
	Name string
}

func (e ErrBucketNotFound) Error() string {
	return fmt.Sprintf("Bucket not found: %s", e.Name)
}
