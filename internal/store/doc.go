// Package store provides the local key-value persistence collaborator the
// board session writes its snapshots to.
//
// Three backends implement KV:
//   - SQLite: a single kv table in a local database file (default)
//   - Redis: plain GET/SET against a Redis server
//   - Memory: process-local map, used by tests and the scenario harness
//
// Values are opaque bytes. The session stores one snapshot under one fixed
// key and replaces it wholesale on every write, so each backend only needs
// atomic single-key replacement.
//
// # SQLite Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Schema changes are tracked with PRAGMA user_version; see runMigrations.
package store
