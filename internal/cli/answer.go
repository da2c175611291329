package cli

import (
	"fmt"
	"strings"
)

// ParseAnswer interprets an interactive yes/no reply. An empty reply means no,
// so pressing enter never mutates anything.
func ParseAnswer(input string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid answer: %q (expected yes or no)", input)
	}
}
