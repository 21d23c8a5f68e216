/*
Package keyframes implements the progress engine that sits between a model and its renderer.

A Keyframes value owns a queue of Segments, one per in-flight transition, and a single
scalar progress cursor over that queue. The integer part of progress selects a segment and
the fractional part is the interpolation progress within it. Operations that arrive while a
transition is still playing are appended as new segments instead of discarding the motion
that is already on screen.

Segment boundaries are half-open, [k, k+1), with one closed exception: progress equal to
the length of the queue is 100% of the last segment rather than 0% of a segment that does
not exist.
*/
package keyframes
