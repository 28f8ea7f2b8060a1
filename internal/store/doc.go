// Package store defines the persistence interfaces for learning paths,
// modules, learning resources and schedules, the error taxonomy every
// implementation maps its failures to, and the transaction helper used by
// the service layer.
//
// Implementations take a DBTX so the same store works on a connection pool
// or inside a transaction; WithTx rebinds a store to a transaction.
package store
