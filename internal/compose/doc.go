// Package compose merges trait method tables into type descriptors at startup.
//
// A [Type] is a named method table. [Compose] declares a composed type built from a base type and a list of
// [Trait] values, and injects every trait method onto the base itself: all [Object] values bound to the base,
// including ones created before the composition, can call the injected methods afterwards. This global effect is
// what lets a single plugin-side declaration grant a capability (for example a database "session" method) to the
// host's own objects.
//
// Injection is checked before anything is mutated. A method name that already exists on the base, or that two of
// the given traits both supply, fails the whole composition with an [*InjectionConflictError]. Composition is meant
// to run once during startup; [Type.Seal] freezes a base so later compositions fail with [ErrSealed].
package compose
