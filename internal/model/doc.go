// Package model defines the data types shared by the crawl components.
//
// The types in this package carry no behavior beyond small helpers: a
// URLEntry describes a discovered crawl target, a Document is the
// structured result of extracting one page, and Stats holds the running
// counters reported at the end of a crawl. Ownership of mutable values
// (frontier, fingerprints, counters) lives in the state package.
package model
