// Package storage provides the small durable key-value store that holds
// cross-session state: the device identifier, display name, and the
// device-to-memory-identity mapping. The interface keeps callers free of
// any specific storage technology.
package storage

// KV is a typed key-value persistence interface. Get reports whether
// the key was present; absence is not an error.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}
