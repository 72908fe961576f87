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
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"yeectl/internal/device"
)

// Actions without a catalog method of their own
const (
	ActionOn  = "on"
	ActionOff = "off"
)

// Light implements device.Device on top of a Client
type Light struct {
	client   *Client
	info     device.DeviceInfo
	effect   Effect
	duration time.Duration
}

// LightOption configures a Light
type LightOption func(*Light)

// WithTransition sets the effect and duration used when an action omits them
func WithTransition(effect Effect, duration time.Duration) LightOption {
	return func(l *Light) {
		if effect != "" {
			l.effect = effect
		}
		if duration > 0 {
			l.duration = duration
		}
	}
}

// WithName sets the display name reported in the device info
func WithName(name string) LightOption {
	return func(l *Light) {
		l.info.Name = name
	}
}

// NewLight wraps client as a device with the given id
func NewLight(id string, client *Client, opts ...LightOption) *Light {
	l := &Light{
		client:   client,
		effect:   EffectSmooth,
		duration: DefaultTransitionDuration,
		info: device.DeviceInfo{
			ID:           id,
			Type:         "yeelight",
			Model:        "Yeelight LED",
			Address:      client.Endpoint().Addr(),
			Capabilities: AvailableActions(),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Client returns the underlying client
func (l *Light) Client() *Client {
	return l.client
}

// GetDeviceInfo returns information about this light
func (l *Light) GetDeviceInfo() device.DeviceInfo {
	return l.info
}

// Process runs a named action. Unknown actions and bad parameters produce an
// unsuccessful response, never an error. Data holds the envelope data.
func (l *Light) Process(ctx context.Context, actionJSON []byte) (*device.ActionResponse, error) {
	request, err := device.ParseActionRequest(actionJSON)
	if err != nil {
		return device.Failure("%v", err), nil
	}

	handler, ok := actionHandlers[request.Action]
	if !ok {
		return device.Failure("unsupported action: %s", request.Action), nil
	}

	env, err := handler(ctx, l, params(request.Parameters))
	if err != nil {
		return device.Failure("invalid parameters: %v", err), nil
	}

	resp := &device.ActionResponse{
		Success: env.Status,
		Data:    env.Data,
	}
	if !env.Status {
		resp.Error = env.Err().Error()
	}
	return resp, nil
}

type actionHandler func(ctx context.Context, l *Light, p params) (Envelope, error)

var actionHandlers = map[string]actionHandler{
	string(GetProp): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		props, err := p.strings("props")
		if err != nil {
			return Envelope{}, err
		}
		return l.client.GetProp(ctx, props...), nil
	},
	string(SetCTAbx): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		ct, err := p.int("ct")
		if err != nil {
			return Envelope{}, err
		}
		effect, duration, err := l.transition(p)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetCTAbx(ctx, ct, effect, duration), nil
	},
	string(SetRGB): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		rgb, err := p.rgb("rgb")
		if err != nil {
			return Envelope{}, err
		}
		effect, duration, err := l.transition(p)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetRGB(ctx, rgb, effect, duration), nil
	},
	string(SetHSV): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		hue, err := p.int("hue")
		if err != nil {
			return Envelope{}, err
		}
		sat, err := p.int("sat")
		if err != nil {
			return Envelope{}, err
		}
		effect, duration, err := l.transition(p)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetHSV(ctx, hue, sat, effect, duration), nil
	},
	string(SetBright): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		bright, err := p.int("brightness")
		if err != nil {
			return Envelope{}, err
		}
		effect, duration, err := l.transition(p)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetBright(ctx, bright, effect, duration), nil
	},
	string(SetPower): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		power, err := p.string("power")
		if err != nil {
			return Envelope{}, err
		}
		effect, duration, err := l.transition(p)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetPower(ctx, Power(power), effect, duration), nil
	},
	string(Toggle): func(ctx context.Context, l *Light, _ params) (Envelope, error) {
		return l.client.Toggle(ctx), nil
	},
	string(SetDefault): func(ctx context.Context, l *Light, _ params) (Envelope, error) {
		return l.client.SetDefault(ctx), nil
	},
	string(StartCF): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		count, err := p.intOr("count", 0)
		if err != nil {
			return Envelope{}, err
		}
		action, err := p.intOr("action", int(CFRecover))
		if err != nil {
			return Envelope{}, err
		}
		flow, err := p.string("flow")
		if err != nil {
			return Envelope{}, err
		}
		return l.client.StartCF(ctx, count, CFAction(action), flow), nil
	},
	string(StopCF): func(ctx context.Context, l *Light, _ params) (Envelope, error) {
		return l.client.StopCF(ctx), nil
	},
	string(SetScene): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		class, err := p.string("class")
		if err != nil {
			return Envelope{}, err
		}
		values, _ := p["values"].([]interface{})
		return l.client.SetScene(ctx, SceneClass(class), values...), nil
	},
	string(CronAdd): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		jobType, err := p.intOr("type", CronPowerOff)
		if err != nil {
			return Envelope{}, err
		}
		value, err := p.int("value")
		if err != nil {
			return Envelope{}, err
		}
		return l.client.CronAdd(ctx, jobType, value), nil
	},
	string(CronGet): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		jobType, err := p.intOr("type", CronPowerOff)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.CronGet(ctx, jobType), nil
	},
	string(CronDel): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		jobType, err := p.intOr("type", CronPowerOff)
		if err != nil {
			return Envelope{}, err
		}
		return l.client.CronDel(ctx, jobType), nil
	},
	string(SetAdjust): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		action, err := p.string("action")
		if err != nil {
			return Envelope{}, err
		}
		prop, err := p.string("prop")
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetAdjust(ctx, AdjustAction(action), AdjustProp(prop)), nil
	},
	string(SetName): func(ctx context.Context, l *Light, p params) (Envelope, error) {
		name, err := p.string("name")
		if err != nil {
			return Envelope{}, err
		}
		return l.client.SetName(ctx, name), nil
	},
	ActionOn: func(ctx context.Context, l *Light, _ params) (Envelope, error) {
		return l.client.On(ctx), nil
	},
	ActionOff: func(ctx context.Context, l *Light, _ params) (Envelope, error) {
		return l.client.Off(ctx), nil
	},
}

// AvailableActions lists the action names Process accepts, sorted
func AvailableActions() []string {
	names := make([]string, 0, len(actionHandlers))
	for name := range actionHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Light) transition(p params) (Effect, time.Duration, error) {
	effect := l.effect
	if _, ok := p["effect"]; ok {
		s, err := p.string("effect")
		if err != nil {
			return "", 0, err
		}
		effect = Effect(s)
	}

	duration := l.duration
	if _, ok := p["duration"]; ok {
		ms, err := p.int("duration")
		if err != nil {
			return "", 0, err
		}
		duration = time.Duration(ms) * time.Millisecond
	}
	return effect, duration, nil
}

// params holds decoded JSON action parameters
type params map[string]interface{}

func (p params) string(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", fmt.Errorf("%s is required", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s, nil
}

func (p params) int(name string) (int, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}

func (p params) intOr(name string, def int) (int, error) {
	if _, ok := p[name]; !ok {
		return def, nil
	}
	return p.int(name)
}

// rgb accepts an integer or a hex string such as "#ff8800"
func (p params) rgb(name string) (int, error) {
	if s, ok := p[name].(string); ok {
		n, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 16, 32)
		if err != nil {
			return 0, fmt.Errorf("%s must be a hex color", name)
		}
		return int(n), nil
	}
	return p.int(name)
}

// strings accepts a list of strings or a single comma separated string
func (p params) strings(name string) ([]string, error) {
	v, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%s is required", name)
	}
	switch list := v.(type) {
	case string:
		return []string{list}, nil
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must contain only strings", name)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of strings", name)
	}
}
