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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simpletrackers/go-tracker/pkg/command"
	"github.com/simpletrackers/go-tracker/pkg/config"
)

const (
	SourceOptionName     = "source"
	TickRateOptionName   = "tick-rate"
	HandOffsetOptionName = "hand-offset"
	TipLengthOptionName  = "tip-length"
	ApiAddressOptionName = "api-address"
	ApiPortOptionName    = "api-port"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Run the calibrated skeleton scene or query a running one",
	}
	cmd.AddCommand(NewRunCommand(cfg))
	cmd.AddCommand(NewGetCommand(cfg))
	cmd.AddCommand(NewStatusCommand(cfg))
	return cmd
}

func NewRunCommand(cfg *config.Config) *cobra.Command {
	var source, handOffset, apiAddress string
	var tickRate, tipLength float64
	var apiPort int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scene loop and serve its API",
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneConfig := cfg.SceneConfig
			if source != "" {
				sceneConfig.Source = source
			}
			if tickRate != 0 {
				sceneConfig.TickRate = tickRate
			}
			if apiAddress != "" {
				sceneConfig.ApiAddress = apiAddress
			}
			if apiPort != 0 {
				sceneConfig.ApiPort = apiPort
			}
			if handOffset != "" {
				v, err := config.ParseVector(handOffset)
				if err != nil {
					return err
				}
				cfg.CalibrationConfig.HandOffset = v
			}
			if cmd.Flags().Changed(TipLengthOptionName) {
				cfg.CalibrationConfig.TipLength = tipLength
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return command.StartSceneServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&source, SourceOptionName, "", fmt.Sprintf("Pose source: %s or %s", config.PoseSourceSim, config.PoseSourceTelemetry))
	cmd.Flags().Float64Var(&tickRate, TickRateOptionName, 0, fmt.Sprintf("Ticks per second. E.g. %.0f", config.DefaultTickRate))
	cmd.Flags().StringVar(&handOffset, HandOffsetOptionName, "", "Hand position relative to the right shoulder at calibration. E.g. 0.1,-0.4,0.2")
	cmd.Flags().Float64Var(&tipLength, TipLengthOptionName, config.DefaultTipLength, "Wrist to fingertip length in metres")
	cmd.Flags().StringVar(&apiAddress, ApiAddressOptionName, "", fmt.Sprintf("API address to bind. E.g. %s", config.DefaultSceneApiAddress))
	cmd.Flags().IntVar(&apiPort, ApiPortOptionName, 0, fmt.Sprintf("API port to bind. E.g. %d", config.DefaultSceneApiPort))
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func NewGetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the latest skeleton geometry and calibration of a running scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			g, err := apiClient.Skeleton()
			if err != nil {
				return err
			}
			state, err := apiClient.Calibration()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"skeleton":    g,
				"calibration": state,
			})
		},
	}
	return cmd
}

func NewStatusCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print session and tick counters of a running scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := command.NewApiClient(cfg).Status()
			if err != nil {
				return err
			}
			device := "none"
			if status.Device != nil {
				device = fmt.Sprint(*status.Device)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\nSource: %s\nDevice: %s\nCalibrated: %t\nTicks: %d\nSkipped: %d\n",
				status.Session, status.Source, device, status.Calibrated, status.Ticks, status.Skipped)
			return nil
		},
	}
	return cmd
}
