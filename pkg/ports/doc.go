/*
Package ports defines the driven ports (interfaces) of the navigation engine.

These interfaces decouple the engine from external implementations, allowing saved
navigation state to live in memory, on disk or in Redis.

# Key Interfaces

  - SnapshotStore: persists the saved-state map of a navigator session.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
