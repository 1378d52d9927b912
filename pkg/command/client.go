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

package command

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/imroc/req"

	"github.com/simpletrackers/go-tracker/pkg/calibration"
	"github.com/simpletrackers/go-tracker/pkg/config"
	"github.com/simpletrackers/go-tracker/pkg/skeleton"
	"github.com/simpletrackers/go-tracker/pkg/srv/scene"
)

// WaitTimeout is how long the client waits for a reply from the API
const WaitTimeout = 5 * time.Second

// ApiClient talks to a running scene API
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	req.SetTimeout(WaitTimeout)
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s/api", net.JoinHostPort(cfg.SceneConfig.ApiAddress, fmt.Sprint(cfg.SceneConfig.ApiPort))),
	}
}

func (c *ApiClient) url(endpoint string) string {
	return fmt.Sprintf("%s/%s", c.ApiPrefix, endpoint)
}

func (c *ApiClient) getJSON(endpoint string, v interface{}) error {
	r, err := req.Get(c.url(endpoint))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return r.ToJSON(v)
}

// Skeleton returns the latest published geometry
func (c *ApiClient) Skeleton() (*skeleton.Geometry, error) {
	g := &skeleton.Geometry{}
	if err := c.getJSON("skeleton", g); err != nil {
		return nil, err
	}
	return g, nil
}

// Calibration returns the calibration state of the scene
func (c *ApiClient) Calibration() (*calibration.State, error) {
	state := &calibration.State{}
	if err := c.getJSON("calibration", state); err != nil {
		return nil, err
	}
	return state, nil
}

// Status returns session, device and tick counters
func (c *ApiClient) Status() (*scene.Status, error) {
	status := &scene.Status{}
	if err := c.getJSON("status", status); err != nil {
		return nil, err
	}
	return status, nil
}
