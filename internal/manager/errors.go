package manager

import "errors"

// notWarmError is returned when a scene id has no warm entry.
type notWarmError struct{ id string }

func (e notWarmError) Error() string { return "scene not warm: " + e.id }

// ErrSceneNotWarm constructs the error for an absent warm entry.
func ErrSceneNotWarm(id string) error { return notWarmError{id: id} }

// IsSceneNotWarm reports whether err indicates an absent warm entry.
func IsSceneNotWarm(err error) bool {
	var e notWarmError
	return errors.As(err, &e)
}

// invalidSceneError rejects scenes that cannot be cached (e.g. empty id).
type invalidSceneError struct{ msg string }

func (e invalidSceneError) Error() string { return "invalid scene: " + e.msg }

// IsInvalidScene reports whether err rejects the scene record itself.
func IsInvalidScene(err error) bool {
	var e invalidSceneError
	return errors.As(err, &e)
}

// invalidConfigError rejects a configuration patch.
type invalidConfigError struct{ msg string }

func (e invalidConfigError) Error() string { return "invalid config: " + e.msg }

// IsInvalidConfig reports whether err rejects a configuration patch.
func IsInvalidConfig(err error) bool {
	var e invalidConfigError
	return errors.As(err, &e)
}

// PrerenderError reports a failed pre-render. The scene is not kept warm.
type PrerenderError struct {
	SceneID string
	Err     error
}

func (e *PrerenderError) Error() string { return "prerender " + e.SceneID + ": " + e.Err.Error() }

func (e *PrerenderError) Unwrap() error { return e.Err }

// IsPrerenderFailure reports whether err is (or wraps) a PrerenderError.
func IsPrerenderFailure(err error) bool {
	var e *PrerenderError
	return errors.As(err, &e)
}

// tooBusyError is returned when no pre-render slot frees up within the configured wait.
type tooBusyError struct{ sceneID string }

func (e tooBusyError) Error() string { return "too busy to render scene: " + e.sceneID }

// ErrTooBusy constructs the error for a warm that found no free render slot.
func ErrTooBusy(id string) error { return tooBusyError{sceneID: id} }

// IsTooBusy reports whether err indicates render admission timed out.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// destroyedError reports a warm whose manager was destroyed before it could commit.
type destroyedError struct{ sceneID string }

func (e destroyedError) Error() string { return "manager destroyed while warming scene: " + e.sceneID }

// IsDestroyed reports whether err indicates the manager shut down mid-warm.
func IsDestroyed(err error) bool {
	var e destroyedError
	return errors.As(err, &e)
}
