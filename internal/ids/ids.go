package ids

import "github.com/segmentio/ksuid"

// New returns a time-sortable, URL-safe identifier.
func New() string {
	return ksuid.New().String()
}

// Prefixed returns New() with a "<prefix>-" lead, e.g. order identifiers.
func Prefixed(prefix string) string {
	return prefix + "-" + New()
}

func Valid(id string) bool {
	_, err := ksuid.Parse(id)
	return err == nil
}
