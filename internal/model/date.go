package model

import (
	"fmt"
	"strings"
	"time"
)

// acceptedDateFormats lists every date layout the pipeline accepts, tried in
// order. Records whose date parses under none of these are rejected.
var acceptedDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	"02/01/2006",
	"01-02-2006",
	"Jan 2, 2006",
}

// canonicalDateFormat is the layout used when writing dates to the ledger.
const canonicalDateFormat = "2006-01-02"

// ParseDate parses a date string under the accepted format list.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range acceptedDateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

// FormatDate renders a date in the canonical ledger layout. For any valid
// date d, ParseDate(FormatDate(d)) recovers d.
func FormatDate(t time.Time) string {
	return t.Format(canonicalDateFormat)
}
