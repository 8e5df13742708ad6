package valuation

import (
	"fmt"
	"sort"
	"strings"
)

// MissingDataError refuses a valuation whose inputs are incomplete. Codes
// lists stocks lacking a current price or a cost-basis snapshot; Rates lists
// currency pairs without an exchange rate.
type MissingDataError struct {
	Codes []string
	Rates []string
}

func (e *MissingDataError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Codes) > 0 {
		parts = append(parts, "stock codes not found: "+strings.Join(e.Codes, ", "))
	}
	if len(e.Rates) > 0 {
		parts = append(parts, "exchange rates not found: "+strings.Join(e.Rates, ", "))
	}
	return fmt.Sprintf("cannot value portfolio: %s", strings.Join(parts, "; "))
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
