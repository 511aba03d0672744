// Package orm binds ORM sessions to host-managed database handles.
//
// # Sessions
//
// A [Handle] is anything exposing a connection URL; the host's database object is one. [Cache] lazily builds one
// [Factory] per handle on first use, keeps it for the handle's lifetime, and hands out a fresh [Session] on every
// call. Factory construction is serialized per handle, so concurrent first callers share a single engine. Failed
// constructions are not cached and surface as [*ConnectionError].
//
// # Connection URLs
//
//   - sqlite://memory, sqlite://:memory:, sqlite:// : a private scratch store in WAL mode shared by the
//     factory's sessions and removed when the factory closes
//   - sqlite:///abs/path.db : an absolute file path
//   - sqlite://relative.db : a path relative to the working directory
//   - sqlite+modernc://... : the same forms on the pure Go driver
//
// # Capability
//
// [SessionTrait] packages the cache as a "session" method that the host composes onto its database type, after which
// [SessionOf] retrieves a session from any database object.
package orm
