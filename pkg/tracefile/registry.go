package tracefile

import (
	"sync"
	"sync/atomic"
)

// metadataRegistry maps event type identities to their assigned metadata
// ids. Lookups and registrations are individually atomic but deliberately
// not synchronized with block writes: two goroutines racing to register the
// same previously-unseen type can both emit a metadata record, and the
// registry converges on whichever registration lands last. Readers tolerate
// redundant metadata records, so the duplication is benign.
type metadataRegistry struct {
	ids     sync.Map // descriptorKey -> uint32
	counter atomic.Uint32
}

// lookup returns the metadata id assigned to the descriptor's type, or 0
// when the type has not been registered.
func (r *metadataRegistry) lookup(d *EventTypeDescriptor) uint32 {
	v, ok := r.ids.Load(d.key())
	if !ok {
		return 0
	}
	return v.(uint32)
}

// register unconditionally maps the descriptor's type to id, replacing any
// prior mapping. Last writer wins.
func (r *metadataRegistry) register(d *EventTypeDescriptor, id uint32) {
	r.ids.Store(d.key(), id)
}

// nextID allocates a fresh metadata id. Ids are dense and 1-based: the
// first allocation returns 1.
func (r *metadataRegistry) nextID() uint32 {
	return r.counter.Add(1)
}
