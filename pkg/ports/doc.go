/*
Package ports defines the driven ports (interfaces) used by the buml tools.

These interfaces decouple the modeling façade from storage and transport, so
the same tools run against an in-memory model, a file, Redis or a remote host.

# Key Interfaces

  - TokenStore: Persists encoded domain models by key (memory, file, redis).
  - ModelLocator: Downloads and uploads encoded models at a URL.
  - Locker: Optional cross-process lock around the active model (redis).
*/
package ports
