package match

import "errors"

var (
	ErrInvalidParam = errors.New("the param is invalid")
	ErrUnknownSide  = errors.New("unknown order side")
)
