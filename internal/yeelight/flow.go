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
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlowMode is the kind of state change one flow step performs
type FlowMode int

const (
	FlowColor FlowMode = 1
	FlowCT    FlowMode = 2
	FlowSleep FlowMode = 7
)

// FlowTuple is one step of a color flow
type FlowTuple struct {
	Duration   time.Duration
	Mode       FlowMode
	Value      int
	Brightness int
}

// FlowExpression renders steps into the comma separated form start_cf expects
func FlowExpression(steps ...FlowTuple) string {
	parts := make([]string, 0, len(steps)*4)
	for _, s := range steps {
		parts = append(parts,
			strconv.FormatInt(s.Duration.Milliseconds(), 10),
			strconv.Itoa(int(s.Mode)),
			strconv.Itoa(s.Value),
			strconv.Itoa(s.Brightness),
		)
	}
	return strings.Join(parts, ",")
}

// ParseFlow is the inverse of FlowExpression
func ParseFlow(expr string) ([]FlowTuple, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	fields := strings.Split(expr, ",")
	if len(fields)%4 != 0 {
		return nil, fmt.Errorf("flow expression has %d values, want a multiple of 4", len(fields))
	}

	steps := make([]FlowTuple, 0, len(fields)/4)
	for i := 0; i < len(fields); i += 4 {
		var nums [4]int
		for j := 0; j < 4; j++ {
			n, err := strconv.Atoi(strings.TrimSpace(fields[i+j]))
			if err != nil {
				return nil, fmt.Errorf("flow step %d: %w", i/4, err)
			}
			nums[j] = n
		}
		steps = append(steps, FlowTuple{
			Duration:   time.Duration(nums[0]) * time.Millisecond,
			Mode:       FlowMode(nums[1]),
			Value:      nums[2],
			Brightness: nums[3],
		})
	}
	return steps, nil
}
