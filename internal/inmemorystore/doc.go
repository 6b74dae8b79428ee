// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the statestore.Store interface.
//
// # Characteristics
//
//   - **Ephemeral:** Created fresh for each loaded trace, never persisted
//   - **Thread-Safe:** A single RWMutex guards visibility and highlights together
//   - **Atomic Batches:** A batch is validated in full before anything is written
//
// # Concurrency Model
//
// Unlike a per-key sync.Map, one RWMutex is used because a batch must be
// observed either completely or not at all, and State must return a
// consistent copy across edges and nodes.
package inmemorystore
