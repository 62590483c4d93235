/*
Package ports defines the driven ports (interfaces) of the form engine.

These interfaces decouple the engine from external implementations, allowing
forms to be persisted in memory, on disk, in Redis or in SQLite.

# Key Interfaces

  - SnapshotStore: Persists and loads form snapshots by key.
  - DistributedLocker: Provides distributed locking for concurrent access to a form.

RunSnapshotStoreContract is a reusable test suite every SnapshotStore adapter runs.
*/
package ports
