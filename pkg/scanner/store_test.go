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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/smartcopy/pkg/rules"
)

func TestStore(t *testing.T) {
	t.Run("put_get_delete", func(t *testing.T) {
		store := NewStore(4)
		sess := newSession("a", "/src", "/dst", false)
		store.Put(sess)

		got, err := store.Get("a")
		require.NoError(t, err)
		assert.Same(t, sess, got)
		assert.Equal(t, 1, store.Len())

		assert.True(t, store.Delete("a"))
		assert.False(t, store.Delete("a"))
		_, err = store.Get("a")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("evicts_oldest_beyond_capacity", func(t *testing.T) {
		store := NewStore(2)
		for _, id := range []string{"a", "b", "c"} {
			store.Put(newSession(id, "/src", "", false))
		}

		assert.Equal(t, 2, store.Len())
		_, err := store.Get("a")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = store.Get("b")
		assert.NoError(t, err)
		_, err = store.Get("c")
		assert.NoError(t, err)
	})

	t.Run("replacing_keeps_position", func(t *testing.T) {
		store := NewStore(2)
		store.Put(newSession("a", "/src", "", false))
		store.Put(newSession("b", "/src", "", false))
		store.Put(newSession("a", "/other", "", false))

		assert.Equal(t, 2, store.Len())
		got, err := store.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "/other", got.SourceRoot)
	})

	t.Run("default_capacity", func(t *testing.T) {
		store := NewStore(0)
		for i := 0; i < DefaultMaxSessions+3; i++ {
			store.Put(newSession(fmt.Sprintf("s%d", i), "/src", "", false))
		}
		assert.Equal(t, DefaultMaxSessions, store.Len())
	})

	t.Run("deleted_session_does_not_count_toward_eviction", func(t *testing.T) {
		store := NewStore(2)
		store.Put(newSession("a", "/src", "", false))
		store.Put(newSession("b", "/src", "", false))
		store.Delete("a")
		store.Put(newSession("c", "/src", "", false))

		_, err := store.Get("b")
		assert.NoError(t, err)
		assert.Equal(t, 2, store.Len())
	})
}

func TestContextCache(t *testing.T) {
	t.Run("concurrent_misses_derive_once", func(t *testing.T) {
		cache := newContextCache()
		want := rules.RuleContext{Mode: rules.ModeBlacklist, Chain: []string{"/p/.copyignore"}}

		var calls atomic.Int32
		var wg sync.WaitGroup
		results := make([]rules.RuleContext, 32)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = cache.loadOrDerive("/p", func() rules.RuleContext {
					calls.Add(1)
					return want
				})
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, r := range results {
			assert.True(t, r.Equal(want))
		}
		assert.Equal(t, 1, cache.len())
	})

	t.Run("first_value_wins", func(t *testing.T) {
		cache := newContextCache()
		first := cache.loadOrDerive("/p", func() rules.RuleContext {
			return rules.RuleContext{Mode: rules.ModeWhitelist, Chain: []string{"a"}}
		})
		second := cache.loadOrDerive("/p", func() rules.RuleContext {
			return rules.RuleContext{Mode: rules.ModeBlacklist, Chain: []string{"b"}}
		})
		assert.True(t, first.Equal(second))
		assert.Equal(t, rules.ModeWhitelist, second.Mode)
	})

	t.Run("callers_cannot_mutate_cached_value", func(t *testing.T) {
		cache := newContextCache()
		got := cache.loadOrDerive("/p", func() rules.RuleContext {
			return rules.RuleContext{Mode: rules.ModeBlacklist, Chain: []string{"a"}}
		})
		got.Chain[0] = "mutated"

		again, ok := cache.load("/p")
		require.True(t, ok)
		assert.Equal(t, "a", again.Chain[0])
	})
}

func ignoreRecord(dir, pattern string) []rules.RuleFileRecord {
	path := dir + "/.copyignore"
	return []rules.RuleFileRecord{{
		Path:     path,
		Kind:     rules.KindBlacklist,
		Patterns: []rules.PatternEntry{{Text: pattern, LineNumber: 1, SourceFile: path}},
	}}
}

func TestSessionContextFor(t *testing.T) {
	sess := newSession("s", "/src", "", false)
	sess.RuleFiles["/src"] = ignoreRecord("/src", "*.log")
	sess.RuleFiles["/src/a/b"] = ignoreRecord("/src/a/b", "*.tmp")

	got, err := sess.ContextFor("/src/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, rules.ModeBlacklist, got.Mode)
	assert.Len(t, got.Patterns, 2)

	// every intermediate directory was cached on the way down
	for _, dir := range []string{"/src", "/src/a", "/src/a/b", "/src/a/b/c"} {
		_, ok := sess.contexts.load(dir)
		assert.True(t, ok, "expected %s to be cached", dir)
	}

	_, err = sess.ContextFor("/elsewhere")
	assert.ErrorIs(t, err, ErrContextNotFound)
	_, err = sess.ContextFor("/srcdir")
	assert.ErrorIs(t, err, ErrContextNotFound)
}
