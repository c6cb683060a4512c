// Copyright 2025 Magnus Pierre
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

// Package signal provides a small synchronous observer used by the stores and
// the view model to publish change notifications.
package signal

import "sync"

// Signal delivers values of type T to connected slots in connection order.
// Emit runs every slot synchronously on the caller's goroutine.
type Signal[T any] struct {
	mu    sync.Mutex
	next  uint64
	slots []slot[T]
}

type slot[T any] struct {
	id uint64
	fn func(T)
}

// Connect registers fn and returns a function that disconnects it.
// The returned function is safe to call more than once.
func (s *Signal[T]) Connect(fn func(T)) (disconnect func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.next++
	id := s.next
	s.slots = append(s.slots, slot[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Signal[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl.id == id {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}

// Emit calls every connected slot with v.
// Slots connected or disconnected during Emit take effect on the next Emit.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	slots := make([]slot[T], len(s.slots))
	copy(slots, s.slots)
	s.mu.Unlock()

	for _, sl := range slots {
		sl.fn(v)
	}
}

// Len returns the number of connected slots.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
