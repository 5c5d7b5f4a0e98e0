package harness

import "errors"

var (
	ErrMissingInstrument = errors.New("harness: instrument is required")
	ErrInvalidCapacity   = errors.New("harness: channel capacity must hold at least one datagram payload")
	ErrMissingLog        = errors.New("harness: order log path is required")
	ErrIncomplete        = errors.New("harness: run stopped before every record was received")
)
