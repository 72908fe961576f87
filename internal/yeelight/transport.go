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
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	"yeectl/internal/logger"
)

// Transport performs one request/response exchange per call over a fresh TCP connection
type Transport struct {
	timeout time.Duration
	dialer  *net.Dialer
	logger  zerolog.Logger
}

// NewTransport creates a transport. A non-positive timeout means DefaultTimeout.
func NewTransport(timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{
		timeout: timeout,
		dialer:  &net.Dialer{},
		logger:  logger.Component("transport"),
	}
}

// Timeout returns the bound applied to each exchange
func (t *Transport) Timeout() time.Duration {
	return t.timeout
}

// Send dials endpoint, writes line in a single write and returns the first response
// line without its terminator. The connection is closed before Send returns.
func (t *Transport) Send(ctx context.Context, endpoint Endpoint, line []byte) ([]byte, error) {
	addr := endpoint.Addr()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: OpDial, Addr: addr, Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, &TransportError{Op: OpDial, Addr: addr, Err: err}
		}
	}
	// Unblock pending I/O if ctx is cancelled before the deadline
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	t.logger.Debug().
		Str("addr", addr).
		Bytes("request", bytes.TrimRight(line, "\r\n")).
		Msg("Sending command")

	if _, err := conn.Write(line); err != nil {
		return nil, &TransportError{Op: OpWrite, Addr: addr, Err: err}
	}

	resp, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		// A final unterminated line is still a response
		if !errors.Is(err, io.EOF) || len(resp) == 0 {
			return nil, &TransportError{Op: OpRead, Addr: addr, Err: err}
		}
	}
	resp = bytes.TrimRight(resp, "\r\n")

	t.logger.Debug().
		Str("addr", addr).
		Bytes("response", resp).
		Msg("Received response")

	return resp, nil
}
