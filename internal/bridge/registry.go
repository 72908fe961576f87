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

package bridge

import (
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"yeectl/internal/yeelight"
)

// Entry is the latest advertisement seen from one bulb
type Entry struct {
	Advertisement *yeelight.Advertisement `json:"advertisement"`
	From          string                  `json:"from"`
	SeenAt        time.Time               `json:"seen_at"`
}

// Registry remembers recently discovered bulbs, one entry per advertised id.
// The least recently seen bulb is evicted once the registry is full.
type Registry struct {
	cache *lru.Cache[string, Entry]
}

// NewRegistry creates a registry holding up to size bulbs
func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry cache: %w", err)
	}
	return &Registry{cache: cache}, nil
}

// Add records ad as seen now from the given address
func (r *Registry) Add(ad *yeelight.Advertisement, from string) {
	r.cache.Add(ad.ID, Entry{
		Advertisement: ad,
		From:          from,
		SeenAt:        time.Now().UTC(),
	})
}

// Get returns the entry for a bulb id
func (r *Registry) Get(id string) (Entry, bool) {
	return r.cache.Get(id)
}

// List returns all entries sorted by bulb id
func (r *Registry) List() []Entry {
	entries := r.cache.Values()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Advertisement.ID < entries[j].Advertisement.ID
	})
	return entries
}

// Len returns the number of bulbs held
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge forgets every bulb
func (r *Registry) Purge() {
	r.cache.Purge()
}
