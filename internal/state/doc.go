// Package state holds the resumable crawl state and persists it.
//
// A State owns the frontier, the visited set, the content fingerprints,
// the failed URLs and the running counters. Snapshot captures all of it
// as a versioned, JSON-encodable value; a Store saves and loads the
// latest snapshot. Three stores exist: a JSON file written atomically,
// the SQLite index database, and a Redis key.
package state
