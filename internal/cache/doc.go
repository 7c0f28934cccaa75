// Package cache defines the disk-backed artifact store the hydrator generator
// writes into: HydratorDir/<manager>/<file>. Writes go through a temp file +
// rename so a reader never sees a half-written hydrator, and per-entry locks
// keep concurrent generators for the same file from interleaving. The store
// sits on an afero.Fs so tests can swap in memory or read-only filesystems.
// It never creates the base directory itself; preparing that directory is the
// warmer's job.
package cache
