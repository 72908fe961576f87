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

// Package bridge exposes configured and discovered bulbs over a small HTTP API.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"yeectl/internal/device"
	"yeectl/internal/logger"
	"yeectl/internal/metrics"
	"yeectl/internal/yeelight"
)

// maxActionBody bounds the size of an action request body
const maxActionBody = 64 << 10

// Server handles REST API requests for bulbs
type Server struct {
	lights       map[string]device.Device
	order        []string
	registry     *Registry
	clientOpts   []yeelight.Option
	discoverOpts []yeelight.DiscoverOption
	logger       zerolog.Logger
	server       *http.Server
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithClientOptions sets the options used for clients of discovered bulbs
func WithClientOptions(opts ...yeelight.Option) ServerOption {
	return func(s *Server) {
		s.clientOpts = opts
	}
}

// WithDiscoverOptions sets the options passed to every discovery run
func WithDiscoverOptions(opts ...yeelight.DiscoverOption) ServerOption {
	return func(s *Server) {
		s.discoverOpts = opts
	}
}

// NewServer creates a bridge serving lights; registry holds discovered bulbs
func NewServer(lights []device.Device, registry *Registry, opts ...ServerOption) *Server {
	s := &Server{
		lights:   make(map[string]device.Device, len(lights)),
		registry: registry,
		logger:   logger.Component("bridge"),
	}
	for _, l := range lights {
		id := l.GetDeviceInfo().ID
		if _, dup := s.lights[id]; !dup {
			s.order = append(s.order, id)
		}
		s.lights[id] = l
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the HTTP handler
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	// Registered ahead of the subrouter so method mismatches under /api/v1 still yield 405
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", s.handleHealth).Methods("GET")
	apiRouter.HandleFunc("/lights", s.handleListLights).Methods("GET")
	apiRouter.HandleFunc("/lights/{light_id}/action", s.handleLightAction).Methods("POST")
	apiRouter.HandleFunc("/discover", s.handleDiscover).Methods("POST")
	apiRouter.HandleFunc("/discovered", s.handleListDiscovered).Methods("GET")

	return router
}

// Start serves the API on address until Stop is called
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("bridge server failed: %w", err)
	}
	return s.Serve(listener)
}

// Serve accepts API connections on listener until Stop is called
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info().
		Str("address", listener.Addr().String()).
		Int("lights", len(s.lights)).
		Msg("Starting bridge")

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("bridge server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully. It is safe to call from another goroutine than Start.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.ObserveBridgeRequest(route, rec.status)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("API request")
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"lights":     len(s.lights),
		"discovered": s.registry.Len(),
	})
}

func (s *Server) handleListLights(w http.ResponseWriter, r *http.Request) {
	infos := make([]device.DeviceInfo, 0, len(s.order))
	for _, id := range s.order {
		infos = append(infos, s.lights[id].GetDeviceInfo())
	}
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"lights": infos,
	})
}

// lookup finds a configured light, falling back to a discovered bulb
func (s *Server) lookup(id string) (device.Device, bool) {
	if l, ok := s.lights[id]; ok {
		return l, true
	}

	entry, ok := s.registry.Get(id)
	if !ok {
		return nil, false
	}
	ep, err := entry.Advertisement.Endpoint()
	if err != nil {
		return nil, false
	}
	client := yeelight.NewClientForEndpoint(ep, s.clientOpts...)
	return yeelight.NewLight(id, client, yeelight.WithName(entry.Advertisement.Name)), true
}

func (s *Server) handleLightAction(w http.ResponseWriter, r *http.Request) {
	lightID := mux.Vars(r)["light_id"]

	light, ok := s.lookup(lightID)
	if !ok {
		s.sendError(w, http.StatusNotFound, "Light not found")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	response, err := light.Process(r.Context(), body)
	if err != nil {
		s.logger.Error().
			Str("light_id", lightID).
			Err(err).
			Msg("Failed to process action")
		s.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process action: %v", err))
		return
	}

	s.sendJSON(w, http.StatusOK, response)
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	replies, err := yeelight.Discover(r.Context(), s.discoverOpts...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Discovery failed")
		s.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Discovery failed: %v", err))
		return
	}

	found := make([]*yeelight.Advertisement, 0, len(replies))
	ignored := 0
	for _, reply := range replies {
		ad, err := yeelight.ParseAdvertisement(reply.Payload)
		if err != nil {
			ignored++
			s.logger.Debug().
				Str("from", reply.Addr.String()).
				Err(err).
				Msg("Ignoring discovery reply")
			continue
		}
		s.registry.Add(ad, reply.Addr.String())
		found = append(found, ad)
	}

	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"replies": len(replies),
		"ignored": ignored,
		"devices": found,
	})
}

func (s *Server) handleListDiscovered(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"devices": s.registry.List(),
	})
}
