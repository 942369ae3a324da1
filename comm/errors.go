package comm

import "errors"

// ErrParentHeaderInvalid is returned by SetParentHeader when the request
// JSON cannot be parsed or lacks a header field. Non-fatal: the previous
// parent context stays active.
var ErrParentHeaderInvalid = errors.New("invalid parent header")
