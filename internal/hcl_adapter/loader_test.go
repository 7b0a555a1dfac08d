package hcl_adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgraph/internal/config"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
	"github.com/vk/flowgraph/internal/testutil"
)

const typesManifest = `
node_type "math/add" {
  description = "adds two numbers"

  input "a" {
    type = int
  }
  input "b" {
    type    = int
    default = 0
  }
  output "sum" {
    type = int
  }
}

node_type "util/join" {
  input "parts" {
    type = list(string)
  }
  output "out" {
    type = string
  }
}
`

const graphDecl = `
node "math/add" "sum1" {}
node "math/add" "sum2" {}

connect {
  from = "sum1.sum"
  to   = "sum2.a"
}

group "stage" {
  members = ["sum1"]
}
`

func TestLoaderLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("manifests and graph across files", func(t *testing.T) {
		dir := testutil.WriteProject(t, map[string]string{
			"types/types.hcl": typesManifest,
			"graph.hcl":       graphDecl,
		})

		doc, err := NewLoader().Load(ctx, dir)
		require.NoError(t, err)

		require.Len(t, doc.Types, 2)
		add, ok := doc.Types["math/add"]
		require.True(t, ok)
		require.Len(t, add.Pins, 3)
		assert.Equal(t, "a", add.Pins[0].Name)
		assert.Equal(t, signature.Input, add.Pins[0].Direction)
		assert.True(t, add.Pins[0].Type.Equals(pintype.Int))
		require.NotNil(t, add.Pins[1].Default, "default survives decoding")
		assert.Nil(t, add.Pins[0].Default)
		assert.Equal(t, "sum", add.Pins[2].Name)
		assert.Equal(t, signature.Output, add.Pins[2].Direction)

		join := doc.Types["util/join"]
		assert.True(t, join.Pins[0].Type.Equals(pintype.List(pintype.String)))

		require.Len(t, doc.Graph.Nodes, 2)
		assert.Equal(t, "sum1", doc.Graph.Nodes[0].Name)
		assert.Equal(t, "math/add", doc.Graph.Nodes[0].TypeName)

		require.Len(t, doc.Graph.Connections, 1)
		assert.Equal(t, config.Address{Node: "sum1", Pin: "sum"}, doc.Graph.Connections[0].From)
		assert.Equal(t, config.Address{Node: "sum2", Pin: "a"}, doc.Graph.Connections[0].To)

		require.Len(t, doc.Graph.Groups, 1)
		assert.Equal(t, []string{"sum1"}, doc.Graph.Groups[0].Members)
	})

	t.Run("single file path", func(t *testing.T) {
		dir := testutil.WriteProject(t, map[string]string{"types.hcl": typesManifest})
		doc, err := NewLoader().Load(ctx, filepath.Join(dir, "types.hcl"))
		require.NoError(t, err)
		assert.Len(t, doc.Types, 2)
	})

	t.Run("overlapping paths are read once", func(t *testing.T) {
		dir := testutil.WriteProject(t, map[string]string{"types.hcl": typesManifest})
		doc, err := NewLoader().Load(ctx, dir, filepath.Join(dir, "types.hcl"))
		require.NoError(t, err)
		assert.Len(t, doc.Types, 2)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("duplicate node_type", func(t *testing.T) {
		dir := testutil.WriteProject(t, map[string]string{
			"a.hcl": typesManifest,
			"b.hcl": typesManifest,
		})
		_, err := NewLoader().Load(ctx, dir)
		assert.Error(t, err)
	})

	t.Run("bad pin type keyword", func(t *testing.T) {
		dir := testutil.WriteProject(t, map[string]string{"bad.hcl": `
node_type "broken" {
  input "x" {
    type = matrix
  }
}
`})
		_, err := NewLoader().Load(ctx, dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "matrix")
	})

	t.Run("bad connect address", func(t *testing.T) {
		dir := testutil.WriteProject(t, map[string]string{"bad.hcl": `
connect {
  from = "justanode"
  to   = "sum2.a"
}
`})
		_, err := NewLoader().Load(ctx, dir)
		assert.Error(t, err)
	})
}
