package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/leasing.txt
var leasingRaw string

// Leasing returns the system prompt for the leasing assistant.
func Leasing() string {
	return strings.TrimSpace(leasingRaw)
}
