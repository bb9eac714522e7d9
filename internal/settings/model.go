package settings

import "time"

// Known setting keys.
const (
	KeySubscriptionAmount = "subscription_amount"
	KeySignatureLeft      = "signature_left"
	KeySignatureRight     = "signature_right"
)

// Setting is a process-wide key/value read at report-generation time.
// Changing a value does not retroactively alter stored history; reports
// always read the value current at generation time.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignatureBlock holds the two signatories printed at the foot of reports.
type SignatureBlock struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// KnownKey reports whether key is one the application manages.
func KnownKey(key string) bool {
	switch key {
	case KeySubscriptionAmount, KeySignatureLeft, KeySignatureRight:
		return true
	}
	return false
}
