package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirescope/core/internal/models"
)

func newScope() *models.Scope {
	scope := models.NewScope()
	scope.Connectors["C1"] = models.Connector{ID: "C1", Name: "ECU", TechnicalID: "X1", CavityCount: 4}
	scope.Splices["SP1"] = models.Splice{ID: "SP1", Name: "Ground", TechnicalID: "SP1", PortCount: 2}
	scope.Wires["w1"] = models.Wire{ID: "w1", TechnicalID: "W1"}
	scope.Wires["w2"] = models.Wire{ID: "w2", TechnicalID: "W2"}
	scope.Normalize()
	return scope
}

func TestConnectorSlots(t *testing.T) {
	t.Run("lists every cavity", func(t *testing.T) {
		slots, err := ConnectorSlots(newScope(), "C1")

		require.NoError(t, err)
		require.Len(t, slots, 4)
		for i, slot := range slots {
			assert.Equal(t, i+1, slot.Index)
			assert.False(t, slot.IsOccupied)
			assert.Nil(t, slot.Occupant)
		}
	})

	t.Run("reports the occupant", func(t *testing.T) {
		scope := newScope()
		w := scope.Wires["w1"]
		w.EndpointB = models.CavityEndpoint("C1", 3)
		scope.Wires["w1"] = w

		slots, err := ConnectorSlots(scope, "C1")

		require.NoError(t, err)
		assert.True(t, slots[2].IsOccupied)
		require.NotNil(t, slots[2].Occupant)
		assert.Equal(t, Occupant{WireID: "w1", WireTechnicalID: "W1", End: models.EndB}, *slots[2].Occupant)
		assert.Equal(t, 1, NextFree(slots))
	})

	t.Run("unknown connector", func(t *testing.T) {
		_, err := ConnectorSlots(newScope(), "nope")

		assert.ErrorIs(t, err, ErrUnknownEntity)
	})
}

func TestSpliceSlots(t *testing.T) {
	scope := newScope()
	_, err := Reserve(scope, "w1", models.EndA, models.PortEndpoint("SP1", 1))
	require.NoError(t, err)
	_, err = Reserve(scope, "w2", models.EndA, models.PortEndpoint("SP1", 2))
	require.NoError(t, err)

	slots, err := SpliceSlots(scope, "SP1")

	require.NoError(t, err)
	assert.True(t, slots[0].IsOccupied)
	assert.True(t, slots[1].IsOccupied)
	assert.Equal(t, 0, NextFree(slots), "a full splice has no free port")
}

func TestReserve(t *testing.T) {
	t.Run("occupied slot names the holder and suggests the next free", func(t *testing.T) {
		scope := newScope()
		_, err := Reserve(scope, "w1", models.EndA, models.CavityEndpoint("C1", 2))
		require.NoError(t, err)

		_, err = Reserve(scope, "w2", models.EndA, models.CavityEndpoint("C1", 2))

		var occupied *SlotOccupiedError
		require.ErrorAs(t, err, &occupied)
		assert.ErrorIs(t, err, ErrOccupied)
		assert.Equal(t, "W1:A", occupied.Occupant.String())
		assert.Equal(t, 1, occupied.SuggestedIndex)
		assert.False(t, scope.Wires["w2"].EndpointA.IsSet(), "nothing was written")
	})

	t.Run("moving an endpoint counts its own slot as free", func(t *testing.T) {
		scope := newScope()
		for i, id := range []string{"w1", "w2"} {
			_, err := Reserve(scope, id, models.EndA, models.CavityEndpoint("C1", i+1))
			require.NoError(t, err)
		}
		w := scope.Wires["w1"]
		w.EndpointB = models.CavityEndpoint("C1", 3)
		scope.Wires["w1"] = w
		scope.Wires["w3"] = models.Wire{ID: "w3", TechnicalID: "W3", EndpointA: models.CavityEndpoint("C1", 4)}
		scope.Normalize()

		_, err := Reserve(scope, "w1", models.EndA, models.CavityEndpoint("C1", 2))

		var occupied *SlotOccupiedError
		require.ErrorAs(t, err, &occupied)
		assert.Equal(t, 1, occupied.SuggestedIndex)
	})

	t.Run("keeps connection and seal references", func(t *testing.T) {
		scope := newScope()
		w := scope.Wires["w1"]
		w.EndpointA = models.WireEndpoint{ConnectionRef: "T-1", SealRef: "S-1"}
		scope.Wires["w1"] = w

		got, err := Reserve(scope, "w1", models.EndA, models.CavityEndpoint("C1", 4))

		require.NoError(t, err)
		assert.Equal(t, "T-1", got.EndpointA.ConnectionRef)
		assert.Equal(t, "S-1", got.EndpointA.SealRef)
		assert.Equal(t, 4, got.EndpointA.CavityIndex)
	})

	t.Run("rejects out of range and unknown targets", func(t *testing.T) {
		scope := newScope()

		_, err := Reserve(scope, "w1", models.EndA, models.CavityEndpoint("C1", 5))
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = Reserve(scope, "w1", models.EndA, models.CavityEndpoint("C1", 0))
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = Reserve(scope, "w1", models.EndA, models.PortEndpoint("nope", 1))
		assert.ErrorIs(t, err, ErrUnknownEntity)

		_, err = Reserve(scope, "w1", models.EndA, models.WireEndpoint{})
		assert.ErrorIs(t, err, ErrInvalidTarget)

		_, err = Reserve(scope, "ghost", models.EndA, models.CavityEndpoint("C1", 1))
		assert.ErrorIs(t, err, ErrUnknownWire)

		_, err = Reserve(scope, "w1", "C", models.CavityEndpoint("C1", 1))
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})
}

func TestRelease(t *testing.T) {
	scope := newScope()
	_, err := Reserve(scope, "w1", models.EndB, models.CavityEndpoint("C1", 1))
	require.NoError(t, err)

	w, err := Release(scope, "w1", models.EndB)

	require.NoError(t, err)
	assert.False(t, w.EndpointB.IsSet())
	slots, _ := ConnectorSlots(scope, "C1")
	assert.False(t, slots[0].IsOccupied)

	_, err = Reserve(scope, "w2", models.EndA, models.CavityEndpoint("C1", 1))
	assert.NoError(t, err, "a released slot can be taken again")
}

func TestConflicts(t *testing.T) {
	t.Run("none in a consistent scope", func(t *testing.T) {
		scope := newScope()
		_, err := Reserve(scope, "w1", models.EndA, models.CavityEndpoint("C1", 1))
		require.NoError(t, err)

		assert.Empty(t, Conflicts(scope))
	})

	t.Run("imported double booking is reported", func(t *testing.T) {
		scope := newScope()
		for _, id := range []string{"w1", "w2"} {
			w := scope.Wires[id]
			w.EndpointA = models.PortEndpoint("SP1", 2)
			scope.Wires[id] = w
		}

		conflicts := Conflicts(scope)

		require.Len(t, conflicts, 1)
		assert.Equal(t, models.PortEndpoint("SP1", 2), conflicts[0].Target)
		assert.Len(t, conflicts[0].Occupants, 2)
	})
}
