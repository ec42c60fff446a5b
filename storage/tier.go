// Package storage defines the key/value tier abstraction backing the session
// store and the local notification log.
//
// Tiers are deliberately best-effort: a write that cannot be persisted (full
// disk, closed database) is swallowed so that the login and notification flows
// never block on storage. Failures are only observable via logs.
package storage

// Tier is a flat string key/value store.
//
// Set and Delete never report failure. Get returns false both for a missing
// key and for an unreadable one.
type Tier interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}
