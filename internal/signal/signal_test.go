package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalDeliversInConnectionOrder(t *testing.T) {
	var s Signal[int]
	var got []string

	s.Connect(func(v int) { got = append(got, "first") })
	s.Connect(func(v int) { got = append(got, "second") })

	s.Emit(1)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestSignalDisconnect(t *testing.T) {
	var s Signal[string]
	calls := 0

	disconnect := s.Connect(func(string) { calls++ })
	s.Emit("a")
	disconnect()
	disconnect()
	s.Emit("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Len())
}

func TestSignalDisconnectDuringEmit(t *testing.T) {
	var s Signal[int]
	calls := 0

	var disconnect func()
	disconnect = s.Connect(func(int) {
		calls++
		disconnect()
	})

	s.Emit(1)
	s.Emit(2)
	assert.Equal(t, 1, calls)
}

func TestSignalNilSlot(t *testing.T) {
	var s Signal[int]
	disconnect := s.Connect(nil)
	disconnect()
	assert.Equal(t, 0, s.Len())
}
