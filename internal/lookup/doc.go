// Package lookup holds the reference table of (circumference, length) → volume
// points. A Table is immutable once built and answers exact-match queries in
// constant time; a Holder owns the current Table for the process and replaces
// it wholesale on reload.
package lookup
