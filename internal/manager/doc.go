// Package manager keeps a bounded set of warm scenes: scenes whose toolset is
// loaded and whose output has been pre-rendered into an off-screen stage so
// they can be shown without a cold render. It is structured into small files
// by concern:
//
//   - manager.go: core Manager type, Initialize/Destroy, the off-screen stage.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: RenderState and ScenePerformanceState.
//   - errors.go: error types and helpers (IsSceneNotWarm, IsPrerenderFailure, ...).
//   - warm.go: WarmScene, GetWarmScene and the commit path.
//   - evict.go: LRU eviction on capacity and the periodic TTL sweep.
//   - unwarm.go: UnwarmScene.
//   - preload.go: SmartPreload and PreloadDeck.
//   - ops.go: WarmSceneAsync operations.
//   - status_report.go: Stats, Status and UpdateConfig.
//   - events.go, eventpub_*.go: lifecycle events and publishers.
//   - render.go: Renderer and the default snapshot renderer.
//
// A Manager is an explicitly constructed service object. Its lifetime is
// bracketed by Initialize and Destroy; several independent managers may live
// in one process.
package manager
