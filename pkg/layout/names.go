package layout

import (
	"sort"
	"sync"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
)

// VarNames is an optional naming context for diagnostics. It maps
// engine variables to human-readable names ("sidebar.width") used by
// the constraint and variable formatters. A nil *VarNames is valid and
// means no names are recorded.
//
// Unlike the solver's indices, the name table carries its own lock:
// diagnostics may be read from contexts outside the mutation path.
type VarNames struct {
	mu    sync.RWMutex
	names map[cassowary.Variable]string
}

// NewVarNames returns an empty naming context.
func NewVarNames() *VarNames {
	return &VarNames{names: make(map[cassowary.Variable]string)}
}

// Set records a name for v. No-op on a nil receiver.
func (n *VarNames) Set(v cassowary.Variable, name string) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.names[v] = name
	n.mu.Unlock()
}

// Get returns the recorded name for v, if any. Safe on a nil receiver.
func (n *VarNames) Get(v cassowary.Variable) (string, bool) {
	if n == nil {
		return "", false
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	name, ok := n.names[v]
	return name, ok
}

// sorted returns every named variable in ascending handle order.
func (n *VarNames) sorted() []cassowary.Variable {
	if n == nil {
		return nil
	}
	n.mu.RLock()
	vars := make([]cassowary.Variable, 0, len(n.names))
	for v := range n.names {
		vars = append(vars, v)
	}
	n.mu.RUnlock()
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}
