// Package service contains the application use cases for learning paths.
//
// LearningService is the caller of the data model: it builds domain entities,
// applies their business methods and persists the result through the stores
// defined in internal/store. Every mutating operation runs in exactly one
// transaction (store.RunInTransaction) using transaction-bound stores obtained
// with WithTx, so a failure part way through leaves nothing behind.
//
// Reads (Get*, List*) go straight to the stores without a transaction.
//
// Error handling:
//   - Store sentinels (not found, duplicate, invalid entity) are returned
//     unchanged so callers can match them with errors.Is.
//   - Everything else, including domain validation failures, is wrapped in a
//     LearningServiceError naming the failed operation.
//
// "Today" for overdue checks is the calendar date of Clock.Now(), which
// carries the configured schedule timezone.
package service
