// Package classify maps server verification-status codes to semantic outcomes.
//
// The mapping is the single source of truth for status handling; call sites
// must never re-interpret raw status codes themselves.
package classify

// Kind is the semantic outcome of a verification attempt.
type Kind uint8

const (
	// Unknown is returned for any status code outside the known set.
	// It is deliberately the zero value: an unset or absent status must
	// never read as Authentic.
	Unknown Kind = iota
	Authentic
	Inconclusive
	Fake
)

// Status codes as assigned by the verification service.
const (
	StatusAuthentic    = 1
	StatusInconclusive = 2
	StatusFake         = 3
)

// Classify maps a raw verification-status code to its outcome kind.
// Codes outside {1,2,3} map to Unknown; they are never coerced to
// Inconclusive.
func Classify(statusCode int) Kind {
	switch statusCode {
	case StatusAuthentic:
		return Authentic
	case StatusInconclusive:
		return Inconclusive
	case StatusFake:
		return Fake
	default:
		return Unknown
	}
}

// String returns the short name of the kind.
func (k Kind) String() string {
	switch k {
	case Authentic:
		return "authentic"
	case Inconclusive:
		return "inconclusive"
	case Fake:
		return "fake"
	default:
		return "unknown"
	}
}

// Label returns the user-facing label for the kind, matching the wording
// shown on the scan result screen.
func (k Kind) Label() string {
	switch k {
	case Authentic:
		return "Authentic"
	case Inconclusive:
		return "Scan Inconclusive"
	case Fake:
		return "Fake"
	default:
		return "Unknown"
	}
}
