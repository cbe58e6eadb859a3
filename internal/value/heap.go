package value

// Heap is the VM's object registry: every VMObject created by NEWOBJ is
// registered here exactly once, and removed once its refcount reaches zero.
type Heap struct {
	objects []*VMObject
}

// NewHeap returns an empty object registry.
func NewHeap() *Heap {
	return &Heap{}
}

// Register appends o to the registry. Called once, at NEWOBJ time.
func (h *Heap) Register(o *VMObject) {
	h.objects = append(h.objects, o)
}

// Release decrements o's refcount and, if it reaches zero, removes o from
// the registry. Returns the resulting refcount.
func (h *Heap) Release(o *VMObject) int {
	n := o.Release()
	if n <= 0 {
		h.remove(o)
	}
	return n
}

func (h *Heap) remove(o *VMObject) {
	for i, other := range h.objects {
		if other == o {
			h.objects = append(h.objects[:i], h.objects[i+1:]...)
			return
		}
	}
}

// Forget removes o from the registry without touching its refcount: used
// when the caller has already driven o's refcount to zero itself and only
// needs the registry entry cleared.
func (h *Heap) Forget(o *VMObject) {
	h.remove(o)
}

// Len returns the number of objects currently registered.
func (h *Heap) Len() int { return len(h.objects) }

// Contains reports whether o is currently registered, used by tests to
// check that an object appears exactly once, then zero times after release.
func (h *Heap) Contains(o *VMObject) bool {
	for _, other := range h.objects {
		if other == o {
			return true
		}
	}
	return false
}

// Collect is the VM's gc_collect hook: a no-op placeholder where a real
// tracing collector could reclaim reference cycles that refcounting alone
// cannot.
func (h *Heap) Collect() {}
