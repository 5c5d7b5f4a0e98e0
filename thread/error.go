package thread

import "errors"

var (
	ErrNotStopped = errors.New("thread: join requested before stop")
	ErrNotControl = errors.New("thread: operation restricted to the control role")
)
