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
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// Advertisement is the parsed form of a discovery reply or NOTIFY message
type Advertisement struct {
	ID              string   `json:"id"`
	Model           string   `json:"model"`
	Name            string   `json:"name,omitempty"`
	Location        string   `json:"location"`
	FirmwareVersion int      `json:"fw_ver"`
	Power           string   `json:"power"`
	Bright          int      `json:"bright"`
	ColorMode       int      `json:"color_mode"`
	CT              int      `json:"ct"`
	RGB             int      `json:"rgb"`
	Hue             int      `json:"hue"`
	Sat             int      `json:"sat"`
	Support         []string `json:"support"`
}

// ParseAdvertisement reads the header block of a reply payload
func ParseAdvertisement(payload []byte) (*Advertisement, error) {
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(payload)))

	status, err := r.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("failed to read advertisement start line: %w", err)
	}
	if !strings.HasPrefix(status, "HTTP/1.1 200") && !strings.HasPrefix(status, "NOTIFY") {
		return nil, fmt.Errorf("unexpected advertisement start line %q", status)
	}

	h, err := r.ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read advertisement headers: %w", err)
	}

	ad := &Advertisement{
		ID:              h.Get("id"),
		Model:           h.Get("model"),
		Name:            h.Get("name"),
		Location:        h.Get("Location"),
		FirmwareVersion: atoiOrZero(h.Get("fw_ver")),
		Power:           h.Get("power"),
		Bright:          atoiOrZero(h.Get("bright")),
		ColorMode:       atoiOrZero(h.Get("color_mode")),
		CT:              atoiOrZero(h.Get("ct")),
		RGB:             atoiOrZero(h.Get("rgb")),
		Hue:             atoiOrZero(h.Get("hue")),
		Sat:             atoiOrZero(h.Get("sat")),
		Support:         strings.Fields(h.Get("support")),
	}
	if ad.ID == "" {
		return nil, fmt.Errorf("advertisement has no id")
	}
	return ad, nil
}

// Endpoint returns the control endpoint from the Location header
func (a *Advertisement) Endpoint() (Endpoint, error) {
	u, err := url.Parse(a.Location)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid location %q: %w", a.Location, err)
	}
	if u.Scheme != "yeelight" || u.Host == "" {
		return Endpoint{}, fmt.Errorf("invalid location %q", a.Location)
	}
	return ParseEndpoint(u.Host)
}

// Supports reports whether the bulb lists method as supported
func (a *Advertisement) Supports(method Method) bool {
	for _, m := range a.Support {
		if m == string(method) {
			return true
		}
	}
	return false
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
