//go:build !unix

package transport

import "time"

// pollStreams on non-unix platforms has no raw-fd select available, so
// every connection's dedicated reception goroutine (one per connection,
// per the concurrency model) is the only consumer of Wait's streams; Wait
// degrades to reporting nothing ready. Callers that need readiness outside
// a dedicated goroutine should use Conn.Recv directly with a short
// timeout instead.
func pollStreams(streams []connPair, timeout time.Duration) []bool {
	return make([]bool, len(streams))
}
