package domain

import "time"

// SearchOptions represents search criteria for tasks.
// An empty OwnerIDs slice matches nothing; From is inclusive, To exclusive.
type SearchOptions struct {
	OwnerIDs []int64
	From     *time.Time
	To       *time.Time
}
