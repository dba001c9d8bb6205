// Package store provides SQLite-backed storage for published scene tables.
//
// The store keeps an append-only publication log:
//   - Scene tables: one row per content hash, with prompts, scenes and
//     objects normalized into child tables
//   - Publications: each publish of a table, with a UUIDv7 id and a
//     logical sequence number
//
// # Critical Patterns
//
// Content-Addressed Tables
//   - scene_tables.hash is ir.TableHash of the table
//   - Publishing the same table twice writes its rows once
//
// Logical Identity and Time
//   - Publication ordering uses seq INTEGER (logical clock), never timestamps
//   - Publication ids are UUIDv7 and only used as identifiers
//
// Deterministic Query Results
//   - List queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Child rows are read back in index order
//
// One Change Target Per Scene
//   - A partial UNIQUE index on objects(table_hash, scene_idx)
//     WHERE change_target = 1 rejects a second change target at write time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
