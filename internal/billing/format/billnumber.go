package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultBillNumberTemplate = "BILL-{YYYY}{MM}-{SEQ6}"

// FormatBillNumber formats a human-referenceable bill number based on a
// template, the bill date, and a monotonic sequence.
//
// This function is PURE:
// - No side effects
// - No DB access
// - Fully deterministic
func FormatBillNumber(template string, billDate time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("bill number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid bill sequence: %d", seq)
	}

	out := template

	// Date tokens
	out = strings.ReplaceAll(out, "{YYYY}", billDate.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", billDate.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", billDate.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", billDate.Format("02"))

	// Simple sequence
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	// Padded sequence
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	// Final safety check: unresolved tokens
	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in bill number format: %s", out)
	}

	return out, nil
}
