package pipeline

import "github.com/saleslens/saleslens/internal/engine"

// validate reports whether a result set is eligible for summarization: it
// must exist and hold at least one row. A nil result set is a valid input
// that yields false, not an error.
func validate(rs *engine.ResultSet) bool {
	return rs != nil && rs.Count > 0
}
