package contract

import (
	"strconv"
	"strings"
)

// IntArg reads an integer tool argument. Model-produced JSON carries numbers
// as float64, occasionally as digit strings, and native ints show up from
// in-process callers; all three decode.
func IntArg(args map[string]any, key string) (int64, bool) {
	if args == nil {
		return 0, false
	}
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
