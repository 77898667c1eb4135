// Package toolset gates access to the per-type resource bundles (libraries and
// stylesheets) a scene or deck needs before it can be rendered.
//
//   - config.go: Config and the built-in registry keyed by scene/deck type.
//   - manager.go: Manager, State snapshots and listener registration.
//   - load.go: LoadToolset/UnloadToolset/PreloadToolsets.
//   - loader.go: Loader interface, NopLoader and the HTTP asset loader.
//   - metrics.go: Prometheus collectors fed from state transitions.
//
// A key is in at most one of the loaded, loading and failed sets. Concurrent
// LoadToolset calls for the same key share a single in-flight load.
package toolset
