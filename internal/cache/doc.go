// Package cache defines the disk-backed store that holds cache generations for
// the asset worker. Each generation is a directory under StoragePath; each
// entry maps a request key (host + cleaned path + hashed query) to a body file
// written with temp file + rename semantics. The store also enumerates and
// deletes whole generations so activation can purge superseded ones, and lists
// entries by prefix so bounded asset classes can evict their oldest members.
package cache
