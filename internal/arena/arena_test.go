package arena

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGet(t *testing.T) {
	a := New(4)
	id := uuid.New()

	slot := a.Insert(id, 100.0, 5.0)
	assert.Equal(t, 0, slot)

	order, ok := a.Get(id)
	require.True(t, ok)
	assert.Equal(t, Order{ID: id, Price: 100.0, Qty: 5.0}, order)
}

func TestGetAbsent(t *testing.T) {
	a := New(4)
	_, ok := a.Get(uuid.New())
	assert.False(t, ok)
}

func TestDeleteFreesSlotForReuse(t *testing.T) {
	a := New(4)
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	slot1 := a.Insert(first, 100.0, 5.0)
	slot2 := a.Insert(second, 101.0, 3.0)

	require.True(t, a.Delete(first))
	assert.False(t, a.Delete(first), "deleting twice must not re-free the slot")

	_, ok := a.Get(first)
	assert.False(t, ok)

	slot3 := a.Insert(third, 102.0, 1.0)
	assert.Equal(t, slot1, slot3, "freed slot should be recycled before growing")
	assert.NotEqual(t, slot2, slot3)
}

func TestDeleteUnknownID(t *testing.T) {
	a := New(4)
	assert.False(t, a.Delete(uuid.New()))
}

func TestSlotMutationVisibleThroughGet(t *testing.T) {
	a := New(4)
	id := uuid.New()
	slot := a.Insert(id, 100.0, 5.0)

	a.Slot(slot).Qty -= 2.0

	order, ok := a.Get(id)
	require.True(t, ok)
	assert.Equal(t, 3.0, order.Qty)
}
