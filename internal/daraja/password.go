package daraja

import (
	"encoding/base64"
	"time"
)

// timestampLayout is the YYYYMMDDHHmmss format Daraja requires.
const timestampLayout = "20060102150405"

// nairobi returns the East African Time location. Safaricom requires the
// STK Push timestamp in EAT regardless of server locale. EAT has no DST,
// so a fixed UTC+3 zone is an exact fallback when tzdata is unavailable.
func nairobi() *time.Location {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return time.FixedZone("EAT", 3*60*60)
	}
	return loc
}

// Credentials derives the timestamp and password for an STK Push request at
// time t. The password is base64(shortcode + passkey + timestamp).
func Credentials(shortCode, passkey string, t time.Time) (timestamp, password string) {
	timestamp = t.In(nairobi()).Format(timestampLayout)
	password = base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
	return timestamp, password
}
