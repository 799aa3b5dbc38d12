package fsm

// epsilonGraph returns adjacency lists over node indices containing exactly
// the empty-label Edge transitions. Start transitions never participate:
// they have no source, so they cannot close a cycle.
func epsilonGraph(a *Automaton) [][]int {
	adj := make([][]int, len(a.Nodes))
	for _, t := range a.Transitions {
		switch t := t.(type) {
		case Start:
			continue
		case Edge:
			if t.Text != "" {
				continue
			}
			adj[t.From] = append(adj[t.From], t.To)
		}
	}
	return adj
}

// findEpsilonCycle runs a three-color DFS over the empty-label subgraph and
// returns one cycle witness in forward order, with the first node repeated
// at the end. It returns nil when the subgraph is acyclic.
//
// Node references must already be in range.
func findEpsilonCycle(a *Automaton) []int {
	const (
		white = iota
		gray
		black
	)

	adj := epsilonGraph(a)
	color := make([]int, len(adj))
	parent := make([]int, len(adj))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range adj[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back-edge u -> v closes the cycle v ... u -> v.
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range adj {
		if color[i] == white && dfs(i) {
			break
		}
	}

	if cycle == nil {
		return nil
	}

	// cycle is [v, u, parent(u), ..., v]; reverse into forward order.
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}
	return cycle
}
