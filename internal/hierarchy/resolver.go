// Package hierarchy resolves the transitive subordinates of a user from the
// self-referential manager relation.
package hierarchy

import (
	"context"
	"sort"

	"worklog/internal/logging"
)

// SubordinateSource lists the users whose manager is the given user
type SubordinateSource interface {
	DirectSubordinates(ctx context.Context, managerID int64) ([]int64, error)
}

// Set is an unordered collection of user ids
type Set map[int64]struct{}

// Contains reports whether id is in the set
func (s Set) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set
func (s Set) Len() int {
	return len(s)
}

// IDs returns the members in ascending order
func (s Set) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolver computes transitive subordinate sets
type Resolver struct {
	source SubordinateSource
}

// NewResolver creates a resolver reading the manager relation from source
func NewResolver(source SubordinateSource) *Resolver {
	return &Resolver{source: source}
}

// Subordinates returns every user reachable from root through the inverse
// manager relation, excluding root itself. Each user is expanded at most
// once, so cyclic data terminates.
func (r *Resolver) Subordinates(ctx context.Context, root int64) (Set, error) {
	result := make(Set)
	visited := map[int64]bool{root: true}
	stack := []int64{root}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		direct, err := r.source.DirectSubordinates(ctx, current)
		if err != nil {
			return nil, err
		}

		for _, id := range direct {
			if visited[id] {
				if id == root {
					logging.Debugf("manager cycle detected through user %d", root)
				}
				continue
			}
			visited[id] = true
			result[id] = struct{}{}
			stack = append(stack, id)
		}
	}

	logging.Debugf("resolved %d subordinates for user %d", len(result), root)
	return result, nil
}
