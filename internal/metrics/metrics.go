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

// Package metrics exposes Prometheus instrumentation for bulb commands, discovery
// and the HTTP bridge.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts commands by method and envelope status
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yeectl_commands_total",
		Help: "Total number of commands sent to bulbs",
	}, []string{"method", "status"})

	// CommandDuration tracks the full connect, write, read and close time per method
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yeectl_command_duration_seconds",
		Help:    "Duration of a bulb command exchange in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// DiscoveryRepliesTotal counts datagrams collected during discovery windows
	DiscoveryRepliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yeectl_discovery_replies_total",
		Help: "Total number of discovery replies received",
	})

	// DiscoveryDuration tracks how long discovery windows last
	DiscoveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yeectl_discovery_duration_seconds",
		Help:    "Duration of discovery in seconds",
		Buckets: []float64{0.5, 1, 2, 3, 5, 10},
	})

	// BridgeRequestsTotal counts HTTP bridge requests by route and status code
	BridgeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yeectl_bridge_requests_total",
		Help: "Total number of HTTP bridge requests",
	}, []string{"route", "code"})
)

// ObserveCommand records one finished command
func ObserveCommand(method string, ok bool, elapsed time.Duration) {
	CommandsTotal.WithLabelValues(method, strconv.FormatBool(ok)).Inc()
	CommandDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveDiscovery records one finished discovery window
func ObserveDiscovery(replies int, elapsed time.Duration) {
	DiscoveryRepliesTotal.Add(float64(replies))
	DiscoveryDuration.Observe(elapsed.Seconds())
}

// ObserveBridgeRequest records one bridge request
func ObserveBridgeRequest(route string, code int) {
	BridgeRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
