package repl

import "errors"

// ErrSessionCrashed is returned by Submit once the session has crashed.
// There is no in-place recovery; the caller must obtain a new target
// process and a new controller.
var ErrSessionCrashed = errors.New("session crashed: restart required")
