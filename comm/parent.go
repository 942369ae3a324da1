package comm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
)

// SetParentHeader replaces the active parent context with the header of the
// given request object. The raw JSON must be an object with a "header"
// field; the header is re-serialized compactly so the signed parent part is
// deterministic. On malformed input the previous context is retained, so a
// parse failure never misattributes later messages to no context; the error
// is logged and returned for the caller to surface.
func (c *Communicator) SetParentHeader(requestJSON string) error {
	var request map[string]json.RawMessage
	if err := json.Unmarshal([]byte(requestJSON), &request); err != nil {
		err = fmt.Errorf("%w: %v", ErrParentHeaderInvalid, err)
		c.logger.Warn("keeping previous parent context", slog.String("error", err.Error()))
		return err
	}

	headerRaw, ok := request["header"]
	if !ok {
		err := fmt.Errorf("%w: missing header field", ErrParentHeaderInvalid)
		c.logger.Warn("keeping previous parent context", slog.String("error", err.Error()))
		return err
	}

	var header map[string]any
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		err = fmt.Errorf("%w: header field: %v", ErrParentHeaderInvalid, err)
		c.logger.Warn("keeping previous parent context", slog.String("error", err.Error()))
		return err
	}

	compact, err := json.Marshal(header)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrParentHeaderInvalid, err)
		c.logger.Warn("keeping previous parent context", slog.String("error", err.Error()))
		return err
	}

	c.parentHeader = compact
	return nil
}

// ParentHeader returns the serialized parent header all subsequently built
// messages will carry, or nil when no context has been set. The returned
// slice is a copy; the communicator's own bytes feed every signature and
// must never be reachable for mutation.
func (c *Communicator) ParentHeader() []byte {
	return slices.Clone(c.parentHeader)
}
