package statement

import (
	"regexp"
	"strconv"
	"strings"
)

// transactionPattern is the debit-transaction line signature: abbreviated
// month, day, four-digit year, the "Paid to" marker, a non-greedy payee
// name, the "Debit INR" marker, and a decimal amount without thousands
// separators. Credits, headers, and totals do not match and are skipped.
var transactionPattern = regexp.MustCompile(
	`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4}\s+Paid to (.*?)\s+Debit INR (\d+\.?\d*)`)

// timePattern matches an HH:MM time with an AM/PM marker, optionally
// separated by whitespace. Found on the line following a transaction line.
var timePattern = regexp.MustCompile(`(\d{2}:\d{2}\s*(?:AM|PM))`)

// Match is one recognized transaction line before normalization.
type Match struct {
	dateToken string
	name      string
	amount    float64
	timeToken string // empty when the following line carried no time
}

// DateToken returns the raw date prefix of the matched line, e.g. "Aug 23, 2025".
func (m *Match) DateToken() string { return m.dateToken }

// Name returns the trimmed payee name.
func (m *Match) Name() string { return m.name }

// Amount returns the parsed debit amount.
func (m *Match) Amount() float64 { return m.amount }

// TimeToken returns the raw time token, or "" when none was consumed.
func (m *Match) TimeToken() string { return m.timeToken }

// HasTime reports whether a time token was consumed for this match.
func (m *Match) HasTime() bool { return m.timeToken != "" }

// Recognize scans the line sequence in order and returns one Match per
// transaction line. When the line after a match carries a time token, the
// token is captured and that line is never re-scanned for a signature of its
// own; otherwise the scan advances one line at a time. No match anywhere is
// not an error, the result is simply empty.
func Recognize(lines []string) []Match {
	var matches []Match

	i := 0
	for i < len(lines) {
		m := transactionPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}

		// The date token is the full prefix of the match up to the
		// "Paid to" marker.
		dateToken := strings.TrimSpace(strings.SplitN(m[0], "Paid to", 2)[0])
		name := strings.TrimSpace(m[2])

		// The amount shape is part of the signature, so parsing cannot fail.
		amount, _ := strconv.ParseFloat(m[3], 64)

		match := Match{
			dateToken: dateToken,
			name:      name,
			amount:    amount,
		}

		if i+1 < len(lines) {
			if tm := timePattern.FindStringSubmatch(lines[i+1]); tm != nil {
				match.timeToken = tm[1]
			}
		}

		matches = append(matches, match)

		if match.HasTime() {
			i += 2
		} else {
			i++
		}
	}

	return matches
}
