/*
Package navmodel implements the element state machine shared by element-based navigation models.

A Model owns the canonical, ordered collection of elements. Each element pairs a KeyedElement
with a from-state and a target-state; an element is idle when both are equal and in
transition otherwise. The collection changes only by accepting operations and by reports that
an element finished its transition. Elements that reach a final state are kept until their
transition finishes so that the removal can be animated, and are pruned afterwards.

Concrete models (see package backstack) supply a Resolver that tells the Model which states
are visible, which state is final, and how states are normalized when saved.
*/
package navmodel
