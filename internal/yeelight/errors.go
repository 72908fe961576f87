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
	"errors"
	"fmt"
)

// Transport operations reported in TransportError.Op
const (
	OpDial  = "dial"
	OpWrite = "write"
	OpRead  = "read"
)

// TransportError is a failure of the TCP exchange with a bulb
type TransportError struct {
	Op   string // dial, write or read
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Addr)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err came from the transport layer
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
