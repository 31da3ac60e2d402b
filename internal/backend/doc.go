// Package backend implements an in-memory document database that behaves
// like a networked one.
//
// Documents live at "/"-delimited paths and hold JSON-like bodies
// (map[string]interface{} trees). Every CRUD call made through a
// CollectionRef or DocumentRef first passes the current NetworkCondition:
// offline mode fails immediately, otherwise the configured latency is paid
// on the injected clock and failures are drawn from the injected random
// source. Successful mutations are applied atomically and then delivered to
// the listeners registered on that exact path.
//
// Delivery is asynchronous. Each subscription owns a queue drained by its own
// goroutine, so notifications for one path arrive in mutation order while
// different paths are not ordered relative to each other.
//
// Call Close when done with a Backend to stop delivery goroutines.
package backend
