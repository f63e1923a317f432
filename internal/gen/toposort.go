package gen

import (
	"errors"
	"fmt"
	"sort"

	"builder-generator/internal/plan"
	"builder-generator/internal/typemodel"
)

// topoSort returns indices in dependency order.
//
// depsFn(i) yields indices that must come before i. When several nodes are
// ready the smallest index is taken first. A cycle is an error.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)

		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return nil, errors.New("cycle detected")
	}

	return order, nil
}

// nestingOrder orders the datatypes of one package so that types used by
// a property come before the types using them. Mutually nested types keep
// their planning order.
func nestingOrder(types []*plan.TypePlan) []*plan.TypePlan {
	index := make(map[typemodel.TypeID]int, len(types))
	for i, t := range types {
		index[t.Datatype.ID] = i
	}

	order, err := topoSort(len(types), func(i int) []int {
		var deps []int

		seen := map[int]bool{i: true}

		for _, p := range types[i].Datatype.Properties {
			p.Type.Walk(func(r *typemodel.TypeRef) {
				if r.Kind != typemodel.RefNamed {
					return
				}

				if j, ok := index[r.ID]; ok && !seen[j] {
					seen[j] = true
					deps = append(deps, j)
				}
			})
		}

		return deps
	})
	if err != nil {
		return types
	}

	out := make([]*plan.TypePlan, len(order))
	for i, j := range order {
		out[i] = types[j]
	}

	return out
}
