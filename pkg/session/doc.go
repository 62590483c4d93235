/*
Package session coordinates concurrent access to persisted forms.

A Manager wraps a SnapshotStore with per-key locks, optionally backed by a
DistributedLocker so that several replicas serving the same form never
interleave a load and a save.
*/
package session
