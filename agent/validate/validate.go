package validate

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// Permissive syntactic checks only. A string passing Email is shaped like an
// address; it is not guaranteed deliverable and no RFC 5322 corner cases are
// handled.
var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phonePattern = regexp.MustCompile(`^(?:\+1\s?)?(?:\(?[0-9]{3}\)?[\s.-]?)?[0-9]{3}[\s.-]?[0-9]{4}$`)
)

func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Phone accepts US-style numbers: optional +1, optional 3-digit area code
// with or without parentheses, and space/dot/dash separators.
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// MoveInDate parses free-form date text and rejects anything unparseable or
// strictly before now. There is no upper bound on how far out the date is.
func MoveInDate(s string) bool {
	return MoveInDateAt(s, time.Now())
}

func MoveInDateAt(s string, now time.Time) bool {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return false
	}
	return !t.Before(now)
}

// BedCount reports whether s is a plain decimal integer greater than zero.
func BedCount(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
