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
	"encoding/json"
	"fmt"
)

// lineTerminator ends every request written to a bulb
const lineTerminator = "\r\n"

// Command is a single request to a bulb
type Command struct {
	ID     int           `json:"id"`
	Method Method        `json:"method"`
	Params []interface{} `json:"params"`
}

// NewCommand builds a command for method with its fixed id
func NewCommand(method Method, params ...interface{}) Command {
	if params == nil {
		params = []interface{}{}
	}

	return Command{
		ID:     method.ID(),
		Method: method,
		Params: params,
	}
}

// Line encodes the command as one terminated JSON line ready for the wire
func (c Command) Line() ([]byte, error) {
	if c.Params == nil {
		c.Params = []interface{}{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s command: %w", c.Method, err)
	}
	return append(data, lineTerminator...), nil
}
