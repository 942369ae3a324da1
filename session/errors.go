package session

import "errors"

// ErrSigningUnavailable is returned by New when a signing key is configured
// but the signature scheme is not one the kernel can compute. Sending
// unsigned traffic in that situation would be silently rejected downstream,
// so startup fails instead.
var ErrSigningUnavailable = errors.New("signing unavailable")
