package analysis

import (
	"fmt"
	"maps"
	"net/url"
)

// reserved body keys an extra field must never shadow
var reservedFields = map[string]bool{
	"user_id":   true,
	"email":     true,
	"file_data": true,
	"file_name": true,
	"targetUrl": true,
}

// Registry maps analysis ids to their descriptors. It is built once and never mutated.
type Registry struct {
	byID  map[ID]Descriptor
	order []ID
}

// NewRegistry validates descriptors and indexes them by id.
func NewRegistry(descs []Descriptor) (*Registry, error) {
	r := &Registry{byID: make(map[ID]Descriptor, len(descs))}
	for _, d := range descs {
		if d.ID == "" {
			return nil, fmt.Errorf("analysis with empty id")
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate analysis id: %s", d.ID)
		}
		u, err := url.Parse(d.RemoteTarget)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("analysis %s: invalid remote target %q", d.ID, d.RemoteTarget)
		}
		for name := range d.ExtraFields {
			if reservedFields[name] {
				return nil, fmt.Errorf("analysis %s: extra field %q is reserved", d.ID, name)
			}
		}
		if d.RequiresFile && d.FileCategory == FileNone {
			return nil, fmt.Errorf("analysis %s: requires a file but has no file category", d.ID)
		}
		d.ExtraFields = maps.Clone(d.ExtraFields)
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// Lookup returns the descriptor for id or ErrNotFound.
func (r *Registry) Lookup(id ID) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d.ExtraFields = maps.Clone(d.ExtraFields)
	return d, nil
}

// List returns descriptors in configuration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		d, _ := r.Lookup(id)
		out = append(out, d)
	}
	return out
}
