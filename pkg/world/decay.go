package world

// LeafDecayRange is the furthest a natural leaf may be from a log, counted
// in steps through other leaves, before it decays.
const LeafDecayRange = 4

var faceOffsets = [6]BlockPos{
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
	{-1, 0, 0}, {1, 0, 0},
}

// decays reports whether a block is foliage that can decay.
func decays(s BlockState) bool {
	return s.IsLeaf() && s.Meta()&LeafNoDecay == 0
}

// leafSupported searches outward from pos through leaves for a log.
func (w *World) leafSupported(pos BlockPos) bool {
	seen := map[BlockPos]bool{pos: true}
	frontier := []BlockPos{pos}
	for depth := 0; depth < LeafDecayRange && len(frontier) > 0; depth++ {
		var next []BlockPos
		for _, p := range frontier {
			for _, d := range faceOffsets {
				n := p.Add(d)
				if seen[n] {
					continue
				}
				seen[n] = true
				s := w.Block(n)
				if s.IsLog() {
					return true
				}
				if s.IsLeaf() {
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return false
}

// ShouldDecay reports whether the block at pos is a natural leaf that no
// longer reaches a log.
func (w *World) ShouldDecay(pos BlockPos) bool {
	return decays(w.Block(pos)) && !w.leafSupported(pos)
}

// DecayableLeaves returns the natural leaves within LeafDecayRange of any of
// the given positions that no longer reach a log. Leaves placed by players
// never decay.
func (w *World) DecayableLeaves(around []BlockPos) []BlockPos {
	checked := make(map[BlockPos]bool)
	var result []BlockPos
	for _, c := range around {
		for dy := int32(-LeafDecayRange); dy <= LeafDecayRange; dy++ {
			for dx := int32(-LeafDecayRange); dx <= LeafDecayRange; dx++ {
				for dz := int32(-LeafDecayRange); dz <= LeafDecayRange; dz++ {
					p := BlockPos{c.X + dx, c.Y + dy, c.Z + dz}
					if checked[p] {
						continue
					}
					checked[p] = true
					if w.ShouldDecay(p) {
						result = append(result, p)
					}
				}
			}
		}
	}
	return result
}
