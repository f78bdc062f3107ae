package statement

import (
	"fmt"
	"strings"
	"time"
)

// Textual layouts of the statement format. The date-only layout defaults the
// time-of-day to midnight.
const (
	dateTimeLayout = "Jan 2, 2006 03:04 PM"
	dateLayout     = "Jan 2, 2006"
)

// NormalizeDateTime combines a mandatory date token and an optional time
// token into a single second-precision timestamp. This is the only place
// date/time parsing happens; downstream code treats the result as opaque.
//
// Tokens that matched the surface regex can still be malformed in principle,
// so failure is reported as an error rather than swallowed; callers collect
// it as a per-record warning and continue the scan.
func NormalizeDateTime(dateToken, timeToken string) (time.Time, error) {
	// The signature regex tolerates runs of whitespace between fields;
	// collapse them so the fixed layouts apply.
	date := strings.Join(strings.Fields(dateToken), " ")

	if timeToken == "" {
		ts, err := time.Parse(dateLayout, date)
		if err != nil {
			return time.Time{}, fmt.Errorf("could not parse date %q: %w", dateToken, err)
		}
		return ts, nil
	}

	combined := strings.Join(strings.Fields(date+" "+timeToken), " ")
	ts, err := time.Parse(dateTimeLayout, combined)
	if err != nil {
		// "02:21PM" carries no whitespace to normalize.
		if ts2, err2 := time.Parse("Jan 2, 2006 03:04PM", combined); err2 == nil {
			return ts2, nil
		}
		return time.Time{}, fmt.Errorf("could not parse date/time %q: %w", combined, err)
	}
	return ts, nil
}
