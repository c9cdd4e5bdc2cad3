// Package worker implements the offline asset cache that sits between the
// browser and the asset origin. It follows an explicit lifecycle: Install
// precaches a fixed manifest into the current cache generation (best effort,
// per-asset failures are collected), Activate purges every other generation and
// takes control, and Fetch maps each intercepted request to a response using
// network-first, cache-first or pass-through policies with declared cache
// writes as side effects.
package worker
