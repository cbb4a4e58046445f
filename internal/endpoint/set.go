package endpoint

import (
	"errors"

	"github.com/Nash0810/multiminio/internal/storage"
)

// ErrEmptySet is returned when a set is built without clients
var ErrEmptySet = errors.New("at least one endpoint is required")

// Set is the ordered, immutable collection of endpoints. Order is priority.
type Set struct {
	endpoints []*Endpoint
}

// NewSet wraps clients in priority order
func NewSet(clients []storage.Client) (*Set, error) {
	if len(clients) == 0 {
		return nil, ErrEmptySet
	}

	endpoints := make([]*Endpoint, len(clients))
	for i, c := range clients {
		if c == nil {
			return nil, errors.New("endpoint client must not be nil")
		}
		endpoints[i] = New(i, c)
	}
	return &Set{endpoints: endpoints}, nil
}

// Get returns the endpoint at priority position i
func (s *Set) Get(i int) *Endpoint {
	return s.endpoints[i]
}

// All returns the endpoints in priority order (copy of slice)
func (s *Set) All() []*Endpoint {
	endpoints := make([]*Endpoint, len(s.endpoints))
	copy(endpoints, s.endpoints)
	return endpoints
}

// Len returns the number of endpoints
func (s *Set) Len() int {
	return len(s.endpoints)
}
