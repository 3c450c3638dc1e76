// access/flags.go

package access

// ToBoolFlag normalizes a loosely-typed feature flag value to a real
// boolean. Upstream store config historically mixes true/false with 0/1,
// so boolean true and numeric 1 both count as enabled. Anything else,
// including nil and missing values, is disabled (fail-closed).
func ToBoolFlag(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		// JSON numbers decode as float64
		return v == 1
	default:
		return false
	}
}
