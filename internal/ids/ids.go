package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier. KSUIDs embed a timestamp,
// so lexicographic order follows creation order.
func New() string {
	return ksuid.New().String()
}
