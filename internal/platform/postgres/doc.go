// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store, the embedded goose migrations that
// create the learning_paths, modules, learning_resources and schedules tables,
// and the mapping from PostgreSQL errors to the store error taxonomy.
//
// Cascading deletes and the uniqueness of schedule dates and sibling order
// indexes are enforced by the schema, not by application code.
package postgres
