// Package popularity resolves download statistics for packages, caching
// records on disk and fetching from the public stats service on a miss.
package popularity

import "time"

// Stats holds download counts for a package over the aggregation windows
// the stats service reports.
type Stats struct {
	Package   string    `json:"package"`
	LastDay   int64     `json:"last_day"`
	LastWeek  int64     `json:"last_week"`
	LastMonth int64     `json:"last_month"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}
