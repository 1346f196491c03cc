package domain

// ValidSafaricomNumber reports whether s is a Safaricom MSISDN in the
// format M-Pesa expects: prefix 2547 or 2541 followed by exactly 8 more
// digits. No separators, no leading plus.
func ValidSafaricomNumber(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	if s[:4] != "2547" && s[:4] != "2541" {
		return false
	}
	return true
}
