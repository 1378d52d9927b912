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

	"github.com/spf13/cobra"

	"github.com/simpletrackers/go-tracker/pkg/command"
	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/srv/telemetry"
)

const (
	AddressOptionName        = "address"
	PortOptionName           = "port"
	RecordOptionName         = "record"
	MetricsAddressOptionName = "metrics-address"
	TargetOptionName         = "target"
	RateOptionName           = "rate"
	TrackerIDOptionName      = "tracker-id"
	CountOptionName          = "count"
	FileOptionName           = "file"

	DefaultSendRate = 50.0
	TimestampFormat = "15:04:05.000000"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Receive, send and inspect tracker telemetry",
	}
	cmd.AddCommand(NewListenCommand(cfg))
	cmd.AddCommand(NewSendCommand(cfg))
	cmd.AddCommand(NewDumpCommand())
	return cmd
}

func NewListenCommand(cfg *config.Config) *cobra.Command {
	var address, record, metricsAddress string
	var port int
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print every telemetry datagram received",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.TelemetryConfig.Address = address
			}
			if port != 0 {
				cfg.TelemetryConfig.Port = port
			}
			if metricsAddress != "" {
				cfg.TelemetryConfig.MetricsAddress = metricsAddress
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return command.StartTelemetryServer(cmd.Context(), cfg, command.TelemetryOptions{
				Record: record,
				Out:    cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultTelemetryAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Port number to bind. E.g. %d", config.DefaultTelemetryPort))
	cmd.Flags().StringVar(&record, RecordOptionName, "", "Capture decoded samples to this file")
	cmd.Flags().StringVar(&metricsAddress, MetricsAddressOptionName, "", "Serve prometheus metrics on this address. E.g. 127.0.0.1:9102")
	return cmd
}

func NewSendCommand(cfg *config.Config) *cobra.Command {
	var target string
	var rate float64
	var trackerID uint8
	var count int
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send synthetic telemetry like a tracker would",
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				target = fmt.Sprintf("127.0.0.1:%d", cfg.TelemetryConfig.Port)
			}
			sender, err := telemetry.NewSender(target, rate, trackerID, count)
			if err != nil {
				return err
			}
			return sender.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&target, TargetOptionName, "", "Receiver host:port. Default 127.0.0.1 and the configured telemetry port")
	cmd.Flags().Float64Var(&rate, RateOptionName, DefaultSendRate, "Packets per second")
	cmd.Flags().Uint8Var(&trackerID, TrackerIDOptionName, 0, "Tracker id carried in every packet")
	cmd.Flags().IntVar(&count, CountOptionName, 0, "Number of packets to send, 0 sends until interrupted")
	return cmd
}

func NewDumpCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the samples of a capture file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return telemetry.Dump(file, func(run string, r telemetry.Record) error {
				_, err := fmt.Fprintf(out, "%s %d %s %s %s\n",
					run, r.Seq, r.Timestamp.Format(TimestampFormat), r.Addr, r.Packet())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&file, FileOptionName, "", "Capture file written by telemetry listen --record")
	cmd.MarkFlagRequired(FileOptionName)
	return cmd
}
