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

package fakebulb

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// Responder answers search requests on a loopback UDP port
type Responder struct {
	conn    *net.UDPConn
	replies [][]byte
	delay   time.Duration

	mu       sync.Mutex
	searches [][]byte

	done chan struct{}
}

// StartResponder sends every payload in replies, in order, to each searcher.
// delay is waited between consecutive replies.
func StartResponder(delay time.Duration, replies ...[]byte) (*Responder, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	r := &Responder{
		conn:    conn,
		replies: replies,
		delay:   delay,
		done:    make(chan struct{}),
	}
	go r.serve()
	return r, nil
}

// Addr returns the address search requests should be sent to
func (r *Responder) Addr() string {
	return r.conn.LocalAddr().String()
}

// Searches returns the search datagrams received so far
func (r *Responder) Searches() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.searches))
	copy(out, r.searches)
	return out
}

// Close stops the responder
func (r *Responder) Close() error {
	err := r.conn.Close()
	<-r.done
	return err
}

func (r *Responder) serve() {
	defer close(r.done)

	buf := make([]byte, 2048)
	for {
		n, from, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}

		search := make([]byte, n)
		copy(search, buf[:n])
		r.mu.Lock()
		r.searches = append(r.searches, search)
		r.mu.Unlock()

		for i, reply := range r.replies {
			if i > 0 && r.delay > 0 {
				time.Sleep(r.delay)
			}
			if _, err := r.conn.WriteToUDP(reply, from); err != nil {
				return
			}
		}
	}
}

// Advertisement renders a discovery reply for a bulb at addr
func Advertisement(id, addr, name string) []byte {
	return []byte("HTTP/1.1 200 OK\r\n" +
		"Cache-Control: max-age=3600\r\n" +
		"Date: \r\n" +
		"Ext: \r\n" +
		"Location: yeelight://" + addr + "\r\n" +
		"Server: POSIX UPnP/1.0 YGLC/1\r\n" +
		"id: " + id + "\r\n" +
		"model: color\r\n" +
		"fw_ver: 18\r\n" +
		"support: get_prop set_default set_power toggle set_bright start_cf stop_cf set_scene cron_add cron_get cron_del set_ct_abx set_rgb set_hsv set_adjust set_name\r\n" +
		"power: on\r\n" +
		"bright: 100\r\n" +
		"color_mode: 2\r\n" +
		"ct: 4000\r\n" +
		"rgb: 16711680\r\n" +
		"hue: 100\r\n" +
		"sat: 35\r\n" +
		"name: " + name + "\r\n")
}
