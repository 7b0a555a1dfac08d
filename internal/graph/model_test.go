package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowgraph/internal/events"
	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
)

// addNode is a test helper that fails the test on a rejected descriptor.
func addNode(t *testing.T, m *Model, name string, pins ...signature.PinDecl) *Node {
	t.Helper()
	n, err := m.AddNode(name, signature.New(pins...))
	require.NoError(t, err)
	return n
}

// pinID resolves a node pin by name and fails the test when it is missing.
func pinID(t *testing.T, m *Model, node ident.NodeID, name string) ident.PinID {
	t.Helper()
	p, ok := m.PinOf(node, name)
	require.True(t, ok, "node %s has no pin %q", node, name)
	return p.ID
}

// recordEvents subscribes a collector to the model's bus.
func recordEvents(m *Model) *[]events.Event {
	var got []events.Event
	m.Bus().Subscribe(func(e events.Event) { got = append(got, e) })
	return &got
}

func TestAddNode(t *testing.T) {
	t.Run("generates pins in declaration order", func(t *testing.T) {
		m := New()
		got := recordEvents(m)

		n := addNode(t, m, "mixer",
			signature.In("a", pintype.Int),
			signature.Out("sum", pintype.Int),
			signature.In("b", pintype.Int),
		)

		require.Len(t, n.Inputs, 2)
		require.Len(t, n.Outputs, 1)

		a, ok := m.PinOf(n.ID, "a")
		require.True(t, ok)
		assert.Equal(t, n.Inputs[0], a.ID)
		assert.Equal(t, signature.Input, a.Direction)
		assert.True(t, a.Type.Equals(pintype.Int))
		assert.Equal(t, n.ID, a.Node)

		b, ok := m.PinOf(n.ID, "b")
		require.True(t, ok)
		assert.Equal(t, n.Inputs[1], b.ID)

		require.Len(t, *got, 1)
		assert.Equal(t, events.NodeAdded{Node: n.ID}, (*got)[0])
	})

	t.Run("missing type defaults to any", func(t *testing.T) {
		m := New()
		n := addNode(t, m, "sink", signature.PinDecl{Name: "in", Direction: signature.Input})
		p, ok := m.PinOf(n.ID, "in")
		require.True(t, ok)
		assert.True(t, p.Type.IsAny())
	})

	t.Run("rejects duplicate pin names", func(t *testing.T) {
		m := New()
		_, err := m.AddNode("bad", signature.New(
			signature.In("x", pintype.Int),
			signature.Out("x", pintype.Int),
		))
		require.Error(t, err)
		assert.True(t, IsValidation(err, InvalidSignature))
		assert.Empty(t, m.NodeIDs())
	})

	t.Run("rejects default on output", func(t *testing.T) {
		m := New()
		v := cty.NumberIntVal(1)
		_, err := m.AddNode("bad", signature.New(
			signature.PinDecl{Name: "out", Type: pintype.Int, Direction: signature.Output, Default: &v},
		))
		require.Error(t, err)
		assert.True(t, IsValidation(err, InvalidSignature))
	})
}

func TestRemoveNode(t *testing.T) {
	t.Run("cascades connections and pins", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.In("in", pintype.Int))
		c, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		require.NoError(t, err)

		got := recordEvents(m)
		require.NoError(t, m.RemoveNode(a.ID))

		_, ok := m.NodeByID(a.ID)
		assert.False(t, ok)
		_, ok = m.ConnectionByID(c.ID)
		assert.False(t, ok)
		_, ok = m.NodeByID(b.ID)
		assert.True(t, ok, "other endpoint's node survives")
		_, ok = m.PinOf(b.ID, "in")
		assert.True(t, ok, "other endpoint's pin survives")

		require.Len(t, *got, 2)
		assert.Equal(t, events.ConnectionRemoved{Connection: c.ID}, (*got)[0])
		assert.Equal(t, events.NodeRemoved{Node: a.ID}, (*got)[1])
		require.NoError(t, m.Audit())
	})

	t.Run("unknown node", func(t *testing.T) {
		m := New()
		err := m.RemoveNode(ident.NewNodeID())
		assert.True(t, IsValidation(err, UnknownEntity))
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("removes the connection", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.In("in", pintype.Int))
		c, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		require.NoError(t, err)

		require.NoError(t, m.Disconnect(c.ID))
		assert.Empty(t, m.ConnectionIDs())
		require.NoError(t, m.Audit())
	})

	t.Run("unknown connection", func(t *testing.T) {
		m := New()
		err := m.Disconnect(ident.NewConnectionID())
		assert.True(t, IsValidation(err, UnknownEntity))
	})

	t.Run("boundary legs are off limits", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", signature.In("in", pintype.Int))
		_, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		require.NoError(t, err)
		_, err = m.CreateGroup("inner", b.ID)
		require.NoError(t, err)

		var leg ident.ConnectionID
		for _, cid := range m.ConnectionIDs() {
			if c, _ := m.ConnectionByID(cid); c.Implicit {
				leg = cid
			}
		}
		require.NotEmpty(t, leg)

		err = m.Disconnect(leg)
		assert.True(t, IsValidation(err, ManagedConnection))
	})
}

func TestSetSignature(t *testing.T) {
	base := signature.New(
		signature.In("in", pintype.Int),
		signature.Out("out", pintype.Int),
	)

	t.Run("persisting pins keep their ids", func(t *testing.T) {
		m := New()
		n := addNode(t, m, "n", base.Pins...)
		inBefore := pinID(t, m, n.ID, "in")

		require.NoError(t, m.SetSignature(n.ID, signature.New(
			signature.In("in", pintype.Int),
			signature.In("extra", pintype.String),
			signature.Out("out", pintype.Int),
		)))

		assert.Equal(t, inBefore, pinID(t, m, n.ID, "in"))
		assert.Len(t, n.Inputs, 2)
		require.NoError(t, m.Audit())
	})

	t.Run("removed pins cascade their connections", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", base.Pins...)
		c, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		require.NoError(t, err)

		require.NoError(t, m.SetSignature(b.ID, signature.New(
			signature.Out("out", pintype.Int),
		)))

		_, ok := m.ConnectionByID(c.ID)
		assert.False(t, ok)
		_, ok = m.PinOf(b.ID, "in")
		assert.False(t, ok)
		require.NoError(t, m.Audit())
	})

	t.Run("direction flip replaces the pin", func(t *testing.T) {
		m := New()
		n := addNode(t, m, "n", base.Pins...)
		inBefore := pinID(t, m, n.ID, "in")

		require.NoError(t, m.SetSignature(n.ID, signature.New(
			signature.Out("in", pintype.Int),
			signature.Out("out", pintype.Int),
		)))

		assert.NotEqual(t, inBefore, pinID(t, m, n.ID, "in"))
		assert.Empty(t, n.Inputs)
		assert.Len(t, n.Outputs, 2)
	})

	t.Run("type change invalidates and recovers connections", func(t *testing.T) {
		m := New()
		a := addNode(t, m, "a", signature.Out("out", pintype.Int))
		b := addNode(t, m, "b", base.Pins...)
		c, err := m.Connect(pinID(t, m, a.ID, "out"), pinID(t, m, b.ID, "in"))
		require.NoError(t, err)

		got := recordEvents(m)
		require.NoError(t, m.SetSignature(b.ID, signature.New(
			signature.In("in", pintype.String),
			signature.Out("out", pintype.Int),
		)))

		cc, ok := m.ConnectionByID(c.ID)
		require.True(t, ok, "breaking edits keep the connection committed")
		assert.Equal(t, StateInvalid, cc.State)
		assert.NotEmpty(t, cc.Reason)
		require.Len(t, *got, 1)
		inv, ok := (*got)[0].(events.ConnectionInvalidated)
		require.True(t, ok)
		assert.Equal(t, c.ID, inv.Connection)
		assert.False(t, inv.Valid)

		// Reverting the edit restores validity.
		require.NoError(t, m.SetSignature(b.ID, base))
		cc, _ = m.ConnectionByID(c.ID)
		assert.Equal(t, StateValid, cc.State)
		assert.Empty(t, cc.Reason)
		last := (*got)[len(*got)-1].(events.ConnectionInvalidated)
		assert.True(t, last.Valid)
	})

	t.Run("rejects invalid descriptor without touching the node", func(t *testing.T) {
		m := New()
		n := addNode(t, m, "n", base.Pins...)
		err := m.SetSignature(n.ID, signature.New(
			signature.In("x", pintype.Int),
			signature.In("x", pintype.Int),
		))
		assert.True(t, IsValidation(err, InvalidSignature))
		_, ok := m.PinOf(n.ID, "in")
		assert.True(t, ok)
	})
}
