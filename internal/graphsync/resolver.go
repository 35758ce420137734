package graphsync

import (
	"go-weave/internal/domain"

	"github.com/google/uuid"
)

// resolver maps an edge endpoint reference to a node persisted in the
// current pass. Lookups go durable id, then temp id, then label; the tiers
// stay separate so the precedence is explicit.
type resolver struct {
	durable map[uuid.UUID]struct{}
	temp    map[string]uuid.UUID
	label   map[string]uuid.UUID
}

// newResolver pairs each submitted node with its inserted row; saved must be
// in submission order.
func newResolver(submitted []NodeInput, saved []domain.WorkflowNode) *resolver {
	r := &resolver{
		durable: make(map[uuid.UUID]struct{}, len(saved)),
		temp:    make(map[string]uuid.UUID),
		label:   make(map[string]uuid.UUID),
	}
	for i, row := range saved {
		r.durable[row.ID] = struct{}{}
		if i >= len(submitted) {
			continue
		}
		if t := submitted[i].TempID; t != "" {
			r.temp[t] = row.ID
		}
		// duplicate labels: last one wins
		if row.Label != "" {
			r.label[row.Label] = row.ID
		}
	}
	return r
}

func (r *resolver) resolve(refs ...string) (uuid.UUID, bool) {
	for _, ref := range refs {
		if id, ok := canonicalUUID(ref); ok {
			if _, persisted := r.durable[id]; persisted {
				return id, true
			}
		}
	}
	for _, ref := range refs {
		if id, ok := r.temp[ref]; ok && ref != "" {
			return id, true
		}
	}
	for _, ref := range refs {
		if id, ok := r.label[ref]; ok && ref != "" {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (r *resolver) merged() map[string]uuid.UUID {
	out := make(map[string]uuid.UUID, len(r.temp)+len(r.label))
	for k, v := range r.label {
		out[k] = v
	}
	for k, v := range r.temp {
		out[k] = v
	}
	return out
}
