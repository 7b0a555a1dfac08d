package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
)

func TestProposeRejections(t *testing.T) {
	t.Run("unknown pins", func(t *testing.T) {
		m := New()
		err := m.Propose(ident.NewPinID(), ident.NewPinID())
		assert.True(t, IsValidation(err, UnknownEntity))
	})

	t.Run("source must be an output", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.In("in", pintype.Int))
		b := addNode(t, m, "b", signature.In("in", pintype.Int))
		err := m.Propose(pinID(t, m, a.ID, "in"), pinID(t, m, b.ID, "in"))
		assert.True(t, IsValidation(err, InvalidDirection))
	})

	t.Run("target must be an input", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.Out("out", pintype.Int))
		err := m.Propose(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "out"))
		assert.True(t, IsValidation(err, InvalidDirection))
	})

	t.Run("self connection is the one-node cycle", func(t *testing.T) {
		m := New()
		n := addNode(t, m, "n",
			signature.In("in", pintype.Int),
			signature.Out("out", pintype.Int),
		)
		err := m.Propose(pinID(t, m, n.ID, "out"), pinID(t, m, n.ID, "in"))
		require.True(t, IsValidation(err, CycleDetected))
		assert.Equal(t, []ident.NodeID{n.ID, n.ID}, err.(*ValidationError).Path)
	})

	t.Run("second producer on an input", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.Out("out", pintype.Int))
		c := addNode(t, m, "c", signature.In("in", pintype.Int))
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, c.ID, "in"))
		require.NoError(t, err)

		err = m.Propose(pinID(t, m, b.ID, "out"), pinID(t, m, c.ID, "in"))
		assert.True(t, IsValidation(err, DuplicateInputConnection))
	})

	t.Run("incompatible types leave the graph unchanged", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.String))
		b := addNode(t, m, "b", signature.In("in", pintype.Int))

		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		assert.True(t, IsValidation(err, IncompatibleTypes))
		assert.Empty(t, m.ConnectionIDs())
		require.NoError(t, m.Audit())
	})

	t.Run("closing a cycle reports the path", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a",
			signature.In("in", pintype.Int),
			signature.Out("out", pintype.Int),
		)
		b := addNode(t, m, "b",
			signature.In("in", pintype.Int),
			signature.Out("out", pintype.Int),
		)
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		require.NoError(t, err)

		err = m.Propose(pinID(t, m, b.ID, "out"), pinID(t, m, a.ID, "in"))
		require.True(t, IsValidation(err, CycleDetected))
		assert.Equal(t, []ident.NodeID{b.ID, a.ID, b.ID}, err.(*ValidationError).Path)
		assert.Contains(t, err.Error(), " -> ")
	})
}

func TestConnectTypeRules(t *testing.T) {
	t.Run("int widens into float", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.In("in", pintype.Float))
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		assert.NoError(t, err)
	})

	t.Run("float does not narrow into int", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Float))
		b := addNode(t, m, "b", signature.In("in", pintype.Int))
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		assert.True(t, IsValidation(err, IncompatibleTypes))
	})

	t.Run("any accepts everything", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.List(pintype.String)))
		b := addNode(t, m, "b", signature.In("in", pintype.Any))
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		assert.NoError(t, err)
	})

	t.Run("custom widening", func(t *testing.T) {
		ts := pintype.NewSystem(pintype.WithWidening(pintype.KindString, pintype.KindAny))
		m := New(WithTypeSystem(ts))
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.In("in", pintype.Float))
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		assert.NoError(t, err, "default widenings stay in place")
	})
}

func TestConnected(t *testing.T) {
	m := New()
	a := addNode(t, m, "a", signature.Out("out", pintype.Int))
	b := addNode(t, m, "b", signature.In("in", pintype.Int))
	src, dst := pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in")

	assert.False(t, m.Connected(src, dst))
	_, err := m.Connect(src, dst)
	require.NoError(t, err)
	assert.True(t, m.Connected(src, dst))

	// Grouping reroutes the edge through a boundary pin; logically the pins
	// stay connected.
	_, err = m.CreateGroup("inner", b.ID)
	require.NoError(t, err)
	assert.True(t, m.Connected(src, dst))
	assert.False(t, m.Connected(dst, src))
}
