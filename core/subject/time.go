package subject

import (
	"strings"
	"time"

	"github.com/escolarapp/escolar/core"
)

// canonical time form: 24-hour, zero-padded HH:MM:SS
const canonicalTimeLayout = "15:04:05"

var (
	layouts24h = []string{"15:04", "15:04:05"}
	layouts12h = []string{"3:04 PM", "3:04PM"}
)

// NormalizeTime parses heterogeneous time-of-day inputs ("14:30", "14:30:00",
// "2:30 PM", "2:30PM") into canonical "HH:MM:SS" form. An empty input yields
// "" (no value). An unparseable input is returned unchanged so that downstream
// validation rejects it.
func NormalizeTime(value string) string {
	value = core.CleanString(value)
	if value == "" {
		return ""
	}

	for _, layout := range layouts24h {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(canonicalTimeLayout)
		}
	}

	upper := strings.ToUpper(value)
	for _, layout := range layouts12h {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format(canonicalTimeLayout)
		}
	}

	return value
}
