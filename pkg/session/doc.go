/*
Package session owns the stored domain models used by the stateful tools.

A Manager wraps a ports.TokenStore with the codec and a per-key lock, so a
load, mutate, save cycle in one process never interleaves with another. With a
ports.Locker (redis) the same cycle is also serialised across replicas;
without one, concurrent processes sharing a store are last-writer-wins.

ActiveModel binds a Manager to one key and is what the MCP server holds.
*/
package session
