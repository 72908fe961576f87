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
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"yeectl/internal/logger"
	"yeectl/internal/metrics"
)

const (
	// MulticastAddr is the group and port bulbs listen on for search requests
	MulticastAddr = "239.255.255.250:1982"
	// DefaultDiscoveryWindow is how long Discover collects replies
	DefaultDiscoveryWindow = 2 * time.Second
	// maxDatagramSize is the receive buffer for a single reply
	maxDatagramSize = 2048
)

// SearchRequest is the datagram sent to locate bulbs
var SearchRequest = []byte("M-SEARCH * HTTP/1.1\r\n" +
	"HOST: 239.255.255.250:1982\r\n" +
	"MAN: \"ssdp:discover\"\r\n" +
	"ST: wifi_bulb")

// Reply is one datagram received during discovery
type Reply struct {
	Payload []byte
	Addr    *net.UDPAddr
}

type discoverOptions struct {
	window time.Duration
	target string
	logger zerolog.Logger
}

// DiscoverOption configures Discover
type DiscoverOption func(*discoverOptions)

// WithWindow sets the collection window; non-positive values keep the default
func WithWindow(window time.Duration) DiscoverOption {
	return func(o *discoverOptions) {
		if window > 0 {
			o.window = window
		}
	}
}

// WithTarget sends the search request to addr instead of the multicast group
func WithTarget(addr string) DiscoverOption {
	return func(o *discoverOptions) {
		o.target = addr
	}
}

// WithDiscoveryLogger replaces the discovery logger
func WithDiscoveryLogger(l zerolog.Logger) DiscoverOption {
	return func(o *discoverOptions) {
		o.logger = l
	}
}

// Discover sends a search request and returns every datagram received before the
// window closes, in arrival order. Receiving nothing is not an error; only socket
// setup and the initial send can fail. An earlier ctx deadline shortens the window.
func Discover(ctx context.Context, opts ...DiscoverOption) ([]Reply, error) {
	o := discoverOptions{
		window: DefaultDiscoveryWindow,
		target: MulticastAddr,
		logger: logger.Component("discovery"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	target, err := net.ResolveUDPAddr("udp4", o.target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve discovery target %s: %w", o.target, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, fmt.Errorf("failed to bind discovery socket: %w", err)
	}
	defer conn.Close()

	start := time.Now()
	deadline := start.Add(o.window)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set discovery deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.WriteToUDP(SearchRequest, target); err != nil {
		return nil, fmt.Errorf("failed to send search request to %s: %w", target, err)
	}

	o.logger.Debug().
		Str("target", target.String()).
		Dur("window", o.window).
		Msg("Search request sent")

	replies := []Reply{}
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if !errors.As(err, &netErr) || !netErr.Timeout() {
				o.logger.Warn().Err(err).Msg("Discovery receive failed, ending window early")
			}
			break
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		replies = append(replies, Reply{Payload: payload, Addr: addr})

		o.logger.Debug().
			Str("from", addr.String()).
			Int("bytes", n).
			Msg("Discovery reply received")
	}

	metrics.ObserveDiscovery(len(replies), time.Since(start))
	return replies, nil
}
