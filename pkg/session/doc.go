/*
Package session implements session management and persistence orchestration.

A session is one navigator's saved-state map. The Manager serializes access to each
session within a process with reference-counted locks and, when a DistributedLocker is
configured, across replicas as well.
*/
package session
