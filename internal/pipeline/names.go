package pipeline

import "fmt"

// nameAllocator hands out output names that are unique within one run. The
// first occurrence of a name keeps it; later ones become "name_n", skipping
// any candidate already handed out, including to a definition literally
// named "name_n".
type nameAllocator struct {
	suffix map[string]int // Next suffix to try per base name
	taken  map[string]bool
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{suffix: make(map[string]int), taken: make(map[string]bool)}
}

func (a *nameAllocator) next(name string) string {
	candidate := name
	for a.taken[candidate] {
		n := a.suffix[name]
		if n < 2 {
			n = 2
		}
		a.suffix[name] = n + 1
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	a.taken[candidate] = true
	return candidate
}
