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

import (
	"fmt"
)

// ErrConfigFileExists returned when config file exists and overwrite is not allowed
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("Config file already exists: %s", e.Path)
}

type ErrLoadConfig struct {
	Path string
	Err  error
}

func (e ErrLoadConfig) Error() string {
	return fmt.Sprintf("Error while loading config from %s: %s", e.Path, e.Err)
}

func (e ErrLoadConfig) Unwrap() error {
	return e.Err
}

type ErrInvalidConfig struct {
	Field string
	What  string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("Invalid config value for %s: %s", e.Field, e.What)
}

type ErrParseVector struct {
	Value string
}

func (e ErrParseVector) Error() string {
	return fmt.Sprintf("Can not parse vector %q, expected x,y,z", e.Value)
}
