// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yeelight

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// DefaultPort is the TCP port Yeelight bulbs accept control connections on.
	DefaultPort = 55443
	// DefaultTimeout bounds a single connect+write+read exchange.
	DefaultTimeout = 5 * time.Second
	// DefaultTransitionDuration is the transition used by On and Off.
	DefaultTransitionDuration = 1000 * time.Millisecond
)

// Method is a method name of the bulb control protocol
type Method string

const (
	GetProp    Method = "get_prop"
	SetCTAbx   Method = "set_ct_abx"
	SetRGB     Method = "set_rgb"
	SetHSV     Method = "set_hsv"
	SetBright  Method = "set_bright"
	SetPower   Method = "set_power"
	Toggle     Method = "toggle"
	SetDefault Method = "set_default"
	StartCF    Method = "start_cf"
	StopCF     Method = "stop_cf"
	SetScene   Method = "set_scene"
	CronAdd    Method = "cron_add"
	CronGet    Method = "cron_get"
	CronDel    Method = "cron_del"
	SetAdjust  Method = "set_adjust"
	SetName    Method = "set_name"
)

// methodIDs pins every method to the request id the bulb sees for it.
var methodIDs = map[Method]int{
	GetProp:    1,
	SetCTAbx:   2,
	SetRGB:     3,
	SetHSV:     4,
	SetBright:  5,
	SetPower:   6,
	Toggle:     7,
	SetDefault: 8,
	StartCF:    9,
	StopCF:     10,
	SetScene:   11,
	CronAdd:    12,
	CronGet:    13,
	CronDel:    14,
	SetAdjust:  15,
	SetName:    16,
}

// Methods lists the catalog in id order
var Methods = []Method{
	GetProp, SetCTAbx, SetRGB, SetHSV, SetBright, SetPower, Toggle, SetDefault,
	StartCF, StopCF, SetScene, CronAdd, CronGet, CronDel, SetAdjust, SetName,
}

// ID returns the fixed request id of the method, or 0 for unknown methods
func (m Method) ID() int {
	return methodIDs[m]
}

// Effect selects how the bulb transitions to a new state
type Effect string

const (
	EffectSudden Effect = "sudden"
	EffectSmooth Effect = "smooth"
)

// Power is the target state for set_power
type Power string

const (
	PowerOn  Power = "on"
	PowerOff Power = "off"
)

// CFAction is what the bulb does after a color flow ends
type CFAction int

const (
	CFRecover CFAction = 0
	CFStay    CFAction = 1
	CFOff     CFAction = 2
)

// SceneClass selects the kind of scene applied by set_scene
type SceneClass string

const (
	SceneColor   SceneClass = "color"
	SceneHSV     SceneClass = "hsv"
	SceneCT      SceneClass = "ct"
	SceneCF      SceneClass = "cf"
	SceneAutoOff SceneClass = "auto_delay_off"
)

// AdjustAction is the direction of a set_adjust call
type AdjustAction string

const (
	AdjustIncrease AdjustAction = "increase"
	AdjustDecrease AdjustAction = "decrease"
	AdjustCircle   AdjustAction = "circle"
)

// AdjustProp is the property changed by set_adjust
type AdjustProp string

const (
	AdjustBright AdjustProp = "bright"
	AdjustCT     AdjustProp = "ct"
	AdjustColor  AdjustProp = "color"
)

// CronPowerOff is the only cron job type the bulbs support
const CronPowerOff = 0

// Endpoint identifies the TCP destination of a bulb
type Endpoint struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Addr returns the dialable host:port form
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Addr()
}

// ParseEndpoint parses "host" or "host:port"; a missing port means DefaultPort
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// No port present
		if s == "" {
			return Endpoint{}, fmt.Errorf("empty endpoint")
		}
		return Endpoint{Host: s, Port: DefaultPort}, nil
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q has no host", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("endpoint %q has invalid port", s)
	}
	return Endpoint{Host: host, Port: port}, nil
}
