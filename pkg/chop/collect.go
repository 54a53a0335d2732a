package chop

import "github.com/StoreStation/TimberCraft/pkg/world"

// frontier is a stack that ignores pushes of positions already pending.
type frontier struct {
	stack   []world.BlockPos
	pending map[world.BlockPos]bool
}

func (f *frontier) push(p world.BlockPos) {
	if f.pending[p] {
		return
	}
	f.pending[p] = true
	f.stack = append(f.stack, p)
}

func (f *frontier) pop() world.BlockPos {
	p := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	delete(f.pending, p)
	return p
}

// scan walks the logs connected to origin and returns them in discovery
// order, origin first, along with whether a natural leaf touched any of them.
func scan(w BlockReader, maxLogs int, origin world.BlockPos, state world.BlockState) ([]world.BlockPos, bool) {
	kind := state.Type()
	f := &frontier{pending: make(map[world.BlockPos]bool)}
	discovered := make(map[world.BlockPos]bool)
	var order []world.BlockPos
	sawLeaf := false

	f.push(origin)
	for len(f.stack) > 0 {
		p := f.pop()
		for _, d := range Kernel {
			n := p.Add(d)
			ns := w.Block(n)
			if ns.Type() == kind && !discovered[n] {
				f.push(n)
			} else if ns.IsNaturalLeaf() {
				sawLeaf = true
			}
		}
		discovered[p] = true
		order = append(order, p)
		if maxLogs > 0 && len(order)-1 >= maxLogs {
			break
		}
	}
	return order, sawLeaf
}

// Collect returns the logs connected to origin that share its type, in
// discovery order and without origin itself. The result is empty when
// cfg.RequireLeavesToChop is set and no natural leaf touches the tree.
func Collect(w BlockReader, cfg Config, origin world.BlockPos, state world.BlockState) []world.BlockPos {
	logs, _ := collect(w, cfg, origin, state)
	return logs
}

func collect(w BlockReader, cfg Config, origin world.BlockPos, state world.BlockState) (logs []world.BlockPos, suppressed bool) {
	order, sawLeaf := scan(w, cfg.MaxLogs, origin, state)
	if cfg.RequireLeavesToChop && !sawLeaf {
		return nil, true
	}
	for _, p := range order {
		if p != origin {
			logs = append(logs, p)
		}
	}
	return logs, false
}
