package model

import "sort"

// RootPatch returns the top-level patch, or nil for an empty graph.
func (pd *Pd) RootPatch() *Patch {
	return pd.Patches[pd.RootPatchID]
}

// AddPatch registers a patch. If a patch with the same ID exists, it is replaced.
func (pd *Pd) AddPatch(patch *Patch) {
	pd.Patches[patch.ID] = patch
}

// AddArray registers an array. If an array with the same ID exists, it is replaced.
func (pd *Pd) AddArray(array *PdArray) {
	pd.Arrays[array.ID] = array
}

// PatchIDs returns all patch ids in ascending order.
func (pd *Pd) PatchIDs() []GlobalID {
	return sortedKeys(pd.Patches)
}

// ArrayIDs returns all array ids in ascending order.
func (pd *Pd) ArrayIDs() []GlobalID {
	return sortedKeys(pd.Arrays)
}

// ArrayByName finds an array by its name. Names share one namespace, the
// array with the lowest id wins if a name was declared twice.
func (pd *Pd) ArrayByName(name string) *PdArray {
	for _, id := range pd.ArrayIDs() {
		if pd.Arrays[id].Args.Name == name {
			return pd.Arrays[id]
		}
	}
	return nil
}

// NodeCount returns the number of nodes across all patches.
func (pd *Pd) NodeCount() int {
	n := 0
	for _, p := range pd.Patches {
		n += len(p.Nodes)
	}
	return n
}

// ConnectionCount returns the number of connections across all patches.
func (pd *Pd) ConnectionCount() int {
	n := 0
	for _, p := range pd.Patches {
		n += len(p.Connections)
	}
	return n
}

// AddNode adds a node to the patch, keyed by its local id.
func (p *Patch) AddNode(node Node) {
	p.Nodes[node.NodeID()] = node
}

// AddConnection appends a connection.
func (p *Patch) AddConnection(conn Connection) {
	p.Connections = append(p.Connections, conn)
}

// NodeIDs returns the local ids of the patch in declaration order.
func (p *Patch) NodeIDs() []LocalID {
	return sortedKeys(p.Nodes)
}

// Name returns the subpatch name (first creation argument), or "" if unnamed.
func (p *Patch) Name() string {
	if len(p.Args) == 0 {
		return ""
	}
	if s, ok := p.Args[0].(string); ok {
		return s
	}
	return ""
}

// SubpatchNodes returns the shell nodes of all subpatches directly contained in p.
func (p *Patch) SubpatchNodes() []*SubpatchNode {
	var result []*SubpatchNode
	for _, id := range p.NodeIDs() {
		if sp, ok := p.Nodes[id].(*SubpatchNode); ok {
			result = append(result, sp)
		}
	}
	return result
}

func sortedKeys[K ~int, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
