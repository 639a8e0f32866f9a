// Package statementq provides a durable delivery queue for gameplay statements.
//
// Typical flow:
//  1. Construct a Controller with a Store (durable mirror) and a Sender (remote endpoint).
//  2. Run the Controller; it owns the Dispatcher goroutine and the periodic flush timer.
//  3. Enqueue records; they are persisted, buffered in memory and flushed in batches.
//  4. On success the record is removed from the Store; on failure its attempt counter is
//     bumped and the next Reconcile re-admits it until it is delivered, exhausts its
//     attempts, or expires.
//
// Store implementations live in the mysql, sqlite, pebble, redis and dynamodb packages.
// The httpsender package implements the wire contract to the collection endpoint.
package statementq
