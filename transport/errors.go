package transport

import "errors"

// ErrTimeout is the distinguished "expected" error returned by Recv when no
// packet arrives within the requested deadline. It is never logged -- a
// recv timeout is normal operation, not a fault.
var ErrTimeout = errors.New("transport: recv timeout")

// ErrClosed is returned by Send/Recv once a connection has been torn down.
var ErrClosed = errors.New("transport: connection closed")
