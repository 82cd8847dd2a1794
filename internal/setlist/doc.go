// Package setlist implements the multi-container ordering engine used to compose a setlist.
//
// Songs live in exactly one container at a time: the pool of unassigned songs, or one of the ordered sets.
// A third reserved container, the placeholder, is a drop target that creates a new set.
//
// # Layers
//
//   - [Store] : containers and their ordered song ids plus the display order of sets
//   - [Resolve] : collision resolution from pointer/drag geometry to a drop target id
//   - [DragStart], [DragOver], [DragEnd], [DragCancel] : pure drag transitions
//     (store, session, event) → (store', session')
//   - [AllocateID], [CreateSet], [Aggregate] : set lifecycle helpers
//   - [Board] : owns the store, the drag [Session], and the last persisted baseline; computes the save
//     payload and reconciles server responses
//
// Transitions never partially apply and never return errors; anything that references an unknown id is a no-op.
// Transitions do not mutate their input store: they return a modified copy, so a [Session] snapshot taken at
// drag start can always be restored exactly.
package setlist
