// Package delegate implements ordered delegate registries with fan-out notification.
//
// A [Registry] holds delegates of some interface type D in registration order. [Notify] delivers one event to every
// registered delegate that implements the callback interface C for that event; delegates that don't are skipped.
// A callback that returns an error or panics is logged and reported in the [Result], and never stops delivery to the
// remaining delegates.
//
// Notify works on a snapshot of the registrations, so it is safe to call concurrently with [Registry.Register] and
// [Registry.Unregister] from any goroutine.
package delegate
