package browse

import "errors"

// Sentinel errors.
var (
	ErrEmpty = errors.New("no variables to browse")
)
