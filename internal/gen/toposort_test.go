package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSort_Order(t *testing.T) {
	order, err := topoSort(3, func(i int) []int {
		switch i {
		case 0:
			return []int{2}
		case 1:
			return []int{0}
		default:
			return nil
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)
}

func TestTopoSort_Cycle(t *testing.T) {
	_, err := topoSort(2, func(i int) []int {
		if i == 0 {
			return []int{1}
		}

		return []int{0}
	})
	require.Error(t, err)
}

func TestNestingOrder_CycleKeepsOrder(t *testing.T) {
	res := planYAML(t, `
package: example.com/tree
types:
  - name: Node
    properties:
      GetParent: Leaf
  - name: Leaf
    properties:
      GetNode: Node
`)
	require.Len(t, res.Types, 2, res.Diagnostics.Error())

	ordered := nestingOrder(res.Types)
	assert.Equal(t, "Leaf", ordered[0].Datatype.ID.Name)
	assert.Equal(t, "Node", ordered[1].Datatype.ID.Name)
}
