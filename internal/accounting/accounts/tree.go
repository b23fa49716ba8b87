package accounts

import "sort"

// Node is an account with its children for tree rendering.
type Node struct {
	Account  Account `json:"account"`
	Children []Node  `json:"children,omitempty"`
}

// BuildTree nests accounts under parentID (nil for roots). Accounts reachable
// twice are emitted once.
func BuildTree(accounts []Account, parentID *int64) []Node {
	byParent := make(map[int64][]Account)
	var roots []Account
	for _, acc := range accounts {
		if acc.ParentID == nil {
			roots = append(roots, acc)
			continue
		}
		byParent[*acc.ParentID] = append(byParent[*acc.ParentID], acc)
	}
	visited := make(map[int64]bool)
	var build func(level []Account) []Node
	build = func(level []Account) []Node {
		sort.Slice(level, func(i, j int) bool { return level[i].Code < level[j].Code })
		out := make([]Node, 0, len(level))
		for _, acc := range level {
			if visited[acc.ID] {
				continue
			}
			visited[acc.ID] = true
			out = append(out, Node{Account: acc, Children: build(byParent[acc.ID])})
		}
		return out
	}
	if parentID == nil {
		return build(roots)
	}
	return build(byParent[*parentID])
}
