/*
Package backstack is the reference navigation model: a stack of destinations where exactly
one is on screen and the rest are stashed behind it.

The collection is ordered most recent first. The active element is the first one whose target
state is not DESTROYED. Operations never delete a visible element directly; they mark it
DESTROYED so that a renderer can animate it out, and the element is pruned when its transition
finishes.

	CREATED -> ON_SCREEN -> STASHED_IN_BACK_STACK
	              ^                 |
	              +-----------------+
	(any) -> DESTROYED
*/
package backstack
