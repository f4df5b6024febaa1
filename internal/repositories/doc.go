// Package repositories implements SQLite persistence for the search cache.
//
// The cache maps (query, market) pairs to previously resolved catalog tracks
// so repeat runs against the same thread skip redundant search calls. It is
// an optimization only: no pipeline state is persisted, and a cold or absent
// cache changes nothing but latency.
package repositories
