// Package database provides SQLite-based storage for corpuscrawl.
//
// This package implements the CrawlDB, which stores:
//   - one record per persisted document with its fingerprint and counts
//   - the FAQ pairs extracted from those documents
//   - the latest crawl checkpoint, when the sqlite state backend is used
//
// SQLite (via modernc.org/sqlite) keeps the index in a single CGO-free
// file next to the corpus. WAL mode lets `corpuscrawl status` read while a
// crawl is writing.
package database
