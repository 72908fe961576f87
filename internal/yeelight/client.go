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
	"time"

	"github.com/rs/zerolog"
	"yeectl/internal/logger"
	"yeectl/internal/metrics"
)

// Client sends catalog commands to a single bulb. Each call opens and closes its own
// connection, so a Client may be shared between goroutines.
type Client struct {
	endpoint  Endpoint
	transport *Transport
	logger    zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each exchange with the bulb
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.transport = NewTransport(timeout)
	}
}

// WithTransport replaces the transport
func WithTransport(t *Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithLogger replaces the client logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the bulb at host:port
func NewClient(host string, port int, opts ...Option) *Client {
	return NewClientForEndpoint(Endpoint{Host: host, Port: port}, opts...)
}

// NewClientForEndpoint creates a client for endpoint
func NewClientForEndpoint(endpoint Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		transport: NewTransport(DefaultTimeout),
		logger:    logger.Component("yeelight"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the bulb this client talks to
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Execute sends cmd and normalizes the reply. Transport and parse failures are
// reported inside the returned envelope.
func (c *Client) Execute(ctx context.Context, cmd Command) Envelope {
	start := time.Now()
	env := c.exchange(ctx, cmd)
	metrics.ObserveCommand(string(cmd.Method), env.Status, time.Since(start))

	if !env.Status {
		c.logger.Debug().
			Str("endpoint", c.endpoint.Addr()).
			Str("method", string(cmd.Method)).
			Interface("data", env.Data).
			Msg("Command did not succeed")
	}
	return env
}

func (c *Client) exchange(ctx context.Context, cmd Command) Envelope {
	line, err := cmd.Line()
	if err != nil {
		return failureEnvelope(err)
	}

	raw, err := c.transport.Send(ctx, c.endpoint, line)
	if err != nil {
		return failureEnvelope(err)
	}
	return Normalize(raw)
}

func (c *Client) call(ctx context.Context, method Method, params ...interface{}) Envelope {
	return c.Execute(ctx, NewCommand(method, params...))
}

// GetProp retrieves the current value of the named properties
func (c *Client) GetProp(ctx context.Context, props ...string) Envelope {
	params := make([]interface{}, len(props))
	for i, p := range props {
		params[i] = p
	}
	return c.call(ctx, GetProp, params...)
}

// SetCTAbx changes the color temperature
func (c *Client) SetCTAbx(ctx context.Context, ct int, effect Effect, duration time.Duration) Envelope {
	return c.call(ctx, SetCTAbx, ct, effect, duration.Milliseconds())
}

// SetRGB changes the color; rgb is 0xRRGGBB as an integer
func (c *Client) SetRGB(ctx context.Context, rgb int, effect Effect, duration time.Duration) Envelope {
	return c.call(ctx, SetRGB, rgb, effect, duration.Milliseconds())
}

// SetHSV changes the color by hue and saturation
func (c *Client) SetHSV(ctx context.Context, hue, sat int, effect Effect, duration time.Duration) Envelope {
	return c.call(ctx, SetHSV, hue, sat, effect, duration.Milliseconds())
}

// SetBright changes the brightness
func (c *Client) SetBright(ctx context.Context, brightness int, effect Effect, duration time.Duration) Envelope {
	return c.call(ctx, SetBright, brightness, effect, duration.Milliseconds())
}

// SetPower switches the bulb on or off in software
func (c *Client) SetPower(ctx context.Context, power Power, effect Effect, duration time.Duration) Envelope {
	return c.call(ctx, SetPower, power, effect, duration.Milliseconds())
}

// Toggle flips the power state
func (c *Client) Toggle(ctx context.Context) Envelope {
	return c.call(ctx, Toggle)
}

// SetDefault saves the current state as the power-on default.
// The bulb's automatic state saving must be off for this to matter.
func (c *Client) SetDefault(ctx context.Context) Envelope {
	return c.call(ctx, SetDefault)
}

// StartCF starts a color flow of count loops (0 means forever)
func (c *Client) StartCF(ctx context.Context, count int, action CFAction, flow string) Envelope {
	return c.call(ctx, StartCF, count, action, flow)
}

// StopCF stops a running color flow
func (c *Client) StopCF(ctx context.Context) Envelope {
	return c.call(ctx, StopCF)
}

// SetScene puts the bulb directly into a scene, turning it on first if needed.
// The number and types of values depend on class.
func (c *Client) SetScene(ctx context.Context, class SceneClass, values ...interface{}) Envelope {
	params := append([]interface{}{class}, values...)
	return c.call(ctx, SetScene, params...)
}

// CronAdd starts a timer job; value is in minutes
func (c *Client) CronAdd(ctx context.Context, jobType, value int) Envelope {
	return c.call(ctx, CronAdd, jobType, value)
}

// CronGet retrieves the timer job of jobType
func (c *Client) CronGet(ctx context.Context, jobType int) Envelope {
	return c.call(ctx, CronGet, jobType)
}

// CronDel stops the timer job of jobType
func (c *Client) CronDel(ctx context.Context, jobType int) Envelope {
	return c.call(ctx, CronDel, jobType)
}

// SetAdjust changes a property relative to its current value
func (c *Client) SetAdjust(ctx context.Context, action AdjustAction, prop AdjustProp) Envelope {
	return c.call(ctx, SetAdjust, action, prop)
}

// SetName stores a name on the bulb; it shows up in discovery replies
func (c *Client) SetName(ctx context.Context, name string) Envelope {
	return c.call(ctx, SetName, name)
}

// On switches the bulb on with a smooth one second transition
func (c *Client) On(ctx context.Context) Envelope {
	return c.SetPower(ctx, PowerOn, EffectSmooth, DefaultTransitionDuration)
}

// Off switches the bulb off with a smooth one second transition
func (c *Client) Off(ctx context.Context) Envelope {
	return c.SetPower(ctx, PowerOff, EffectSmooth, DefaultTransitionDuration)
}
