package types

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Map is a scratch dictionary value backed by a swiss-table hash map, the
// same backing structure the bytecode emitter's interning tables use. It is
// not part of spec.md's value set; it exists only as an internal building
// block for corelib natives that need key lookup (spec.md §6 supplement).
type Map struct {
	m     *swiss.Map[Value, Value]
	count int
}

var _ Value = (*Map)(nil)

// NewMap returns an empty Map with initial capacity for at least size
// entries.
func NewMap(size int) *Map {
	return &Map{m: swiss.NewMap[Value, Value](uint32(size))}
}

func (m *Map) String() string { return fmt.Sprintf("map(%p)", m) }
func (m *Map) Type() string   { return "Map" }

func (m *Map) Get(k Value) (Value, bool) { return m.m.Get(k) }

func (m *Map) Put(k, v Value) {
	if _, exists := m.m.Get(k); !exists {
		m.count++
	}
	m.m.Put(k, v)
}

func (m *Map) Len() int { return m.count }
