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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ExceptionKey holds the failure description in synthetic failure envelopes
const ExceptionKey = "exception"

// Envelope is the normalized outcome of every command. Status is derived from Data
// and is true only when Data carries a truthy "result".
type Envelope struct {
	Status bool                   `json:"status"`
	Data   map[string]interface{} `json:"data"`
}

// DeviceError is the error object a bulb returns for a rejected command
type DeviceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

func newEnvelope(data map[string]interface{}) Envelope {
	result, ok := data["result"]
	return Envelope{
		Status: ok && result != nil && result != false,
		Data:   data,
	}
}

// failureEnvelope wraps a local failure into the same shape callers get from the bulb
func failureEnvelope(err error) Envelope {
	return newEnvelope(map[string]interface{}{
		ExceptionKey: err.Error(),
	})
}

// Normalize parses one response line. Input that is not a single JSON object becomes a
// failure envelope carrying the parse error.
func Normalize(raw []byte) Envelope {
	data, err := decodeObject(raw)
	if err != nil {
		return failureEnvelope(err)
	}
	return newEnvelope(data)
}

func decodeObject(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("malformed response: not a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("malformed response: trailing data after JSON object")
	}
	return data, nil
}

// Result returns data.result when it is an array
func (e Envelope) Result() []interface{} {
	result, _ := e.Data["result"].([]interface{})
	return result
}

// Exception returns the local failure description, if any
func (e Envelope) Exception() string {
	msg, _ := e.Data[ExceptionKey].(string)
	return msg
}

// DeviceError returns the error object reported by the bulb, if any
func (e Envelope) DeviceError() *DeviceError {
	obj, ok := e.Data["error"].(map[string]interface{})
	if !ok {
		return nil
	}

	de := &DeviceError{}
	if msg, ok := obj["message"].(string); ok {
		de.Message = msg
	}
	if code, ok := obj["code"].(json.Number); ok {
		if n, err := code.Int64(); err == nil {
			de.Code = int(n)
		}
	}
	return de
}

// Err summarizes a failed envelope as an error; nil when Status is true
func (e Envelope) Err() error {
	if e.Status {
		return nil
	}
	if msg := e.Exception(); msg != "" {
		return errors.New(msg)
	}
	if de := e.DeviceError(); de != nil {
		return de
	}
	return errors.New("response has no result")
}

// Props pairs the names passed to get_prop with the values in the result
func (e Envelope) Props(names ...string) map[string]string {
	result := e.Result()
	props := make(map[string]string, len(names))
	for i, name := range names {
		if i >= len(result) {
			break
		}
		props[name] = fmt.Sprint(result[i])
	}
	return props
}
