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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simpletrackers/go-tracker/cmd/completion"
	"github.com/simpletrackers/go-tracker/cmd/config"
	"github.com/simpletrackers/go-tracker/cmd/scene"
	"github.com/simpletrackers/go-tracker/cmd/telemetry"
	pkgconfig "github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	ConfigOptionName   = "config"
)

// NewRootCommand loads the config once before any subcommand runs. Flags of
// the subcommands override what was loaded.
func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, configPath string
	cfg := pkgconfig.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:           "go-tracker",
		Short:         "Tool to receive tracker telemetry and calibrate a skeleton against it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				*cfg = *pkgconfig.NewConfig(configPath)
			}
			loadErr := cfg.Load()
			reset := loadErr != nil && cmd.Annotations[config.ResetOnLoadErrorAnnotation] != ""
			if reset {
				*cfg = *pkgconfig.NewConfig(cfg.Filepath())
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := log.SetLevel(cfg.LogLevel); err != nil {
				return err
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
			if reset {
				log.Warning("Using defaults, %s", loadErr)
				return nil
			}
			return loadErr
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(telemetry.NewCommand(cfg))
	cmd.AddCommand(scene.NewCommand(cfg))
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&configPath, ConfigOptionName, "", fmt.Sprintf("Config file. Default %s", pkgconfig.DefaultConfigPath()))
	return cmd
}
