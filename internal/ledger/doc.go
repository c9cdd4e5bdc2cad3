// Package ledger persists the user's recorded measurements. The whole ledger is
// one JSON array stored under a single key, the same shape the browser build
// kept in localStorage, so every write is a read-modify-write of that blob.
// Truck tags live in a second key. Read-side projections (grouping by species,
// totals) are pure functions over List.
package ledger
