package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		for _, id := range []string{
			NewNodeID().String(),
			NewPinID().String(),
			NewConnectionID().String(),
			NewGroupID().String(),
		} {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}

func TestIDPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewNodeID().String(), "node-"))
	assert.True(t, strings.HasPrefix(NewPinID().String(), "pin-"))
	assert.True(t, strings.HasPrefix(NewConnectionID().String(), "conn-"))
	assert.True(t, strings.HasPrefix(NewGroupID().String(), "group-"))
}

func TestIsZero(t *testing.T) {
	assert.True(t, NodeID("").IsZero())
	assert.True(t, GroupID("").IsZero())
	assert.False(t, NewNodeID().IsZero())
	assert.False(t, NewPinID().IsZero())
}
