package redis

const (
	// KeyPrefix namespaces every key written by the docs service.
	KeyPrefix = "docs:"
	// DefaultStorageKey is the well-known key holding the state document.
	DefaultStorageKey = "docs-app-state"
)

// StateKey returns the Redis key for the state document stored under name.
func StateKey(name string) string {
	if name == "" {
		name = DefaultStorageKey
	}
	return KeyPrefix + name
}
