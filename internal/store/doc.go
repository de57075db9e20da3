// Package store defines the benchmark result model and the session contracts
// used to read and write it. Implementations live in internal/storage; this
// package must not import database drivers or concrete clients.
package store
