// Package credstore holds the session credential. The session controller and
// API client receive a Store instead of reaching for ambient global state.
package credstore

const (
	// KeyToken holds the bearer token returned by login/register.
	KeyToken = "token"
	// KeyUser holds the serialized user profile, when the API returns one.
	KeyUser = "user"
)

// Store is a small key-value credential store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	// Clear drops every key; used for logout and 401 teardown.
	Clear() error
}

// HasToken reports whether s holds a non-empty bearer token.
func HasToken(s Store) bool {
	if s == nil {
		return false
	}
	v, ok := s.Get(KeyToken)
	return ok && v != ""
}
