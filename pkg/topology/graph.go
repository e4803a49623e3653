package topology

import (
	"sort"

	"github.com/gridcase/csv2mgc/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NetworkGraph is an undirected view of the junctions and active edges of a
// case. Junction ids are used directly as gonum node ids.
type NetworkGraph struct {
	graph *simple.UndirectedGraph
	edges int
}

// BuildGraph builds the graph of c. Inactive edges, self loops and edges with
// an endpoint missing from the junction collection are left out; validation
// reports those separately.
func BuildGraph(c *model.Case) *NetworkGraph {
	ng := &NetworkGraph{graph: simple.NewUndirectedGraph()}

	for _, j := range c.Junctions {
		if ng.graph.Node(j.ID) == nil {
			ng.graph.AddNode(simple.Node(j.ID))
		}
	}

	for _, ke := range c.EdgeList() {
		e := ke.Edge
		if !e.Active() || e.FromJunction == e.ToJunction {
			continue
		}
		from := ng.graph.Node(e.FromJunction)
		to := ng.graph.Node(e.ToJunction)
		if from == nil || to == nil {
			continue
		}
		if !ng.graph.HasEdgeBetween(from.ID(), to.ID()) {
			ng.graph.SetEdge(ng.graph.NewEdge(from, to))
			ng.edges++
		}
	}

	return ng
}

// NodeCount returns the number of distinct junctions.
func (ng *NetworkGraph) NodeCount() int {
	return ng.graph.Nodes().Len()
}

// EdgeCount returns the number of distinct junction pairs that are connected.
func (ng *NetworkGraph) EdgeCount() int {
	return ng.edges
}

// Neighbors returns the sorted ids of the junctions adjacent to id.
func (ng *NetworkGraph) Neighbors(id int64) []int64 {
	if ng.graph.Node(id) == nil {
		return nil
	}
	var out []int64
	iter := ng.graph.From(id)
	for iter.Next() {
		out = append(out, iter.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Islands returns the connected components as sorted junction id lists,
// largest first and ties broken by smallest id.
func (ng *NetworkGraph) Islands() [][]int64 {
	components := topo.ConnectedComponents(ng.graph)
	islands := make([][]int64, 0, len(components))
	for _, comp := range components {
		ids := make([]int64, len(comp))
		for i, n := range comp {
			ids[i] = n.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		islands = append(islands, ids)
	}
	sort.Slice(islands, func(i, j int) bool {
		if len(islands[i]) != len(islands[j]) {
			return len(islands[i]) > len(islands[j])
		}
		return islands[i][0] < islands[j][0]
	})
	return islands
}

// Islands is shorthand for BuildGraph(c).Islands().
func Islands(c *model.Case) [][]int64 {
	return BuildGraph(c).Islands()
}
