package server

import (
	"fmt"

	"github.com/nebularoute/osc"
)

// UnmatchedPatternError reports that no registered handler claimed a
// message. The dispatcher itself never returns this — it only replies
// with introspection, for UDP requests whose path ends in "/" — but it is kept for
// callers (tests, custom Listeners) that want to treat an unclaimed
// message as an error in their own code path.
type UnmatchedPatternError struct {
	Msg osc.Message
}

func (u UnmatchedPatternError) Error() string {
	return fmt.Sprintf("no handlers for message: %v", u.Msg)
}
