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

package pose

import (
	"fmt"
	"strings"
)

// ErrDeviceNotFound is returned by Discover when no device has a wanted class
type ErrDeviceNotFound struct {
	Classes []DeviceClass
}

func (e ErrDeviceNotFound) Error() string {
	names := make([]string, len(e.Classes))
	for i, c := range e.Classes {
		names[i] = c.String()
	}
	return fmt.Sprintf("No active device of class: %s", strings.Join(names, ", "))
}

type ErrUnknownDeviceClass struct {
	Name string
}

func (e ErrUnknownDeviceClass) Error() string {
	return fmt.Sprintf("Unknown device class: %s", e.Name)
}
