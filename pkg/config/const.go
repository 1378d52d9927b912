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

package config

const (
	ConfigDir  = ".go-tracker"
	ConfigFile = "config"
	EnvPrefix  = "GO_TRACKER_"

	DefaultLogLevel = "info"

	DefaultTelemetryAddress = "0.0.0.0"
	DefaultTelemetryPort    = 8080
	// ReceiveBufferSize is the size of the datagram buffer. Anything longer is truncated by the socket.
	ReceiveBufferSize = 1024

	DefaultTickRate        = 60.0
	MaxTickRate            = 1000000
	DefaultPoseSource      = PoseSourceSim
	DefaultSceneApiAddress = "127.0.0.1"
	DefaultSceneApiPort    = 8003
	DefaultSimInvalidTicks = 30

	DefaultTipLength = 0.15
)

const (
	PoseSourceSim       = "sim"
	PoseSourceTelemetry = "telemetry"
)

var (
	DefaultHandOffset    = Vector{0.1, -0.4, 0.2}
	DefaultDeviceClasses = []string{"generic_tracker"}
)
