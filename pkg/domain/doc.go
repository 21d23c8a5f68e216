/*
Package domain contains the core domain models shared by every navigation model in Waypoint.

It defines the identity of destinations, the operation contract used to transform model
state, and the observability hooks emitted by the engine. This package is kept pure and free
of external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - KeyedElement: A destination payload paired with a unique, monotonically increasing ID.
  - IDGenerator: The per-instance source of element IDs.
  - Operation: An applicability-gated, pure transform of a model state.
  - SavedStateMap: The serialization-agnostic shape of persisted model state.
*/
package domain
