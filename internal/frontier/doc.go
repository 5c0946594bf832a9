// Package frontier implements the URL frontier: a priority queue of
// discovered, not-yet-visited URLs with visited bookkeeping.
//
// Every URL is canonicalized before it is compared, so the same
// resource never occupies the queue twice and is never re-fetched once
// marked visited. Entries pop by ascending tier and, within a tier, in
// insertion order.
//
// The package also holds the two pure URL policies the frontier is fed
// through: Classifier assigns a tier from the URL path and Scope decides
// whether a URL belongs to the target site at all.
package frontier
