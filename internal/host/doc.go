// Package host defines the application surface plugins are written against.
//
// An [Application] bundles the library [Database], the [Player], and the [UserInterface].
// Plugins register delegates on the database and player to hear about changes, open ORM
// sessions through the database's session capability, and add menu [Action]s.
//
// Delegates are plain values implementing any subset of the per-callback interfaces
// ([SongsChangedHandler], [StateChangedHandler], ...). Callbacks a delegate does not
// implement are skipped. Embed [BaseDatabaseDelegate] or [BasePlayerDelegate] to
// satisfy the full set with no-ops.
//
// [Bootstrap] wires everything in the order plugins rely on: the log bridge first, then
// the session capability on the database type, then the application and its plugins.
package host
