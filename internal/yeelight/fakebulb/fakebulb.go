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

// Package fakebulb runs an in-process stand-in for a Yeelight bulb on loopback
// sockets. It answers control commands over TCP and search requests over UDP.
package fakebulb

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// Handler produces the raw response line for a request line. Returning an empty
// string closes the connection without replying.
type Handler func(request string) string

// Bulb is a fake bulb listening on 127.0.0.1
type Bulb struct {
	listener net.Listener
	handler  Handler

	mu       sync.Mutex
	requests []string
	power    string
	bright   int
	name     string

	wg sync.WaitGroup
}

// Start listens on a random loopback port. A nil handler uses the built-in
// stateful behaviour.
func Start(handler Handler) (*Bulb, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	b := &Bulb{
		listener: l,
		power:    "off",
		bright:   50,
		name:     "fake",
	}
	b.handler = handler
	if b.handler == nil {
		b.handler = b.respond
	}

	b.wg.Add(1)
	go b.serve()
	return b, nil
}

// Host returns the listening host
func (b *Bulb) Host() string {
	return b.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port
func (b *Bulb) Port() int {
	return b.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns host:port
func (b *Bulb) Addr() string {
	return b.listener.Addr().String()
}

// Requests returns every request line received so far, terminators included
func (b *Bulb) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.requests))
	copy(out, b.requests)
	return out
}

// Power returns the simulated power state
func (b *Bulb) Power() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.power
}

// Close stops the listener and waits for open connections to finish
func (b *Bulb) Close() error {
	err := b.listener.Close()
	b.wg.Wait()
	return err
}

func (b *Bulb) serve() {
	defer b.wg.Done()
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}
		b.wg.Add(1)
		go b.handle(conn)
	}
}

func (b *Bulb) handle(conn net.Conn) {
	defer b.wg.Done()
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}

	b.mu.Lock()
	b.requests = append(b.requests, line)
	b.mu.Unlock()

	reply := b.handler(strings.TrimRight(line, "\r\n"))
	if reply == "" {
		return
	}
	_, _ = conn.Write([]byte(reply + "\r\n"))
}

type request struct {
	ID     int               `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// respond is the default stateful handler
func (b *Bulb) respond(line string) string {
	var req request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return `{"id":0,"error":{"code":-1,"message":"invalid command"}}`
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch req.Method {
	case "get_prop":
		values := make([]string, 0, len(req.Params))
		for _, raw := range req.Params {
			var prop string
			_ = json.Unmarshal(raw, &prop)
			values = append(values, strconv.Quote(b.prop(prop)))
		}
		return fmt.Sprintf(`{"id":%d,"result":[%s]}`, req.ID, strings.Join(values, ","))
	case "set_power":
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &b.power)
		}
	case "toggle":
		if b.power == "on" {
			b.power = "off"
		} else {
			b.power = "on"
		}
	case "set_bright":
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &b.bright)
		}
	case "set_name":
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &b.name)
		}
	case "set_ct_abx", "set_rgb", "set_hsv", "set_default", "start_cf", "stop_cf",
		"set_scene", "cron_add", "cron_del", "set_adjust":
	case "cron_get":
		return fmt.Sprintf(`{"id":%d,"result":[{"type":0,"delay":15,"mix":0}]}`, req.ID)
	default:
		return fmt.Sprintf(`{"id":%d,"error":{"code":-1,"message":"method not supported"}}`, req.ID)
	}
	return fmt.Sprintf(`{"id":%d,"result":["ok"]}`, req.ID)
}

func (b *Bulb) prop(name string) string {
	switch name {
	case "power":
		return b.power
	case "bright":
		return strconv.Itoa(b.bright)
	case "name":
		return b.name
	default:
		return ""
	}
}
