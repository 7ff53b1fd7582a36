// Copyright 2025 walteh LLC
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

package scanner

import (
	"sync"

	"github.com/walteh/smartcopy/pkg/rules"
	"golang.org/x/sync/singleflight"
)

// contextCache memoizes one RuleContext per directory. Entries are only ever added; the first
// value stored for a key is the one every caller sees.
type contextCache struct {
	mu      sync.RWMutex
	entries map[string]rules.RuleContext
	group   singleflight.Group
}

func newContextCache() *contextCache {
	return &contextCache{entries: make(map[string]rules.RuleContext)}
}

func (c *contextCache) load(key string) (rules.RuleContext, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// loadOrDerive returns the cached context for key, deriving and storing it on a miss.
// Concurrent misses on the same key share a single derivation.
func (c *contextCache) loadOrDerive(key string, derive func() rules.RuleContext) rules.RuleContext {
	if v, ok := c.load(key); ok {
		return v.Clone()
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.load(key); ok {
			return v, nil
		}
		derived := derive()

		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.entries[key]; ok {
			return existing, nil
		}
		c.entries[key] = derived
		return derived, nil
	})

	return v.(rules.RuleContext).Clone()
}

func (c *contextCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
