package keypager

// Limits applied to untrusted page sizes by NormalizeLimit and Pager.WithLimit.
// Build itself accepts any positive limit.
const (
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax clamps limit into [1, maxLimit], substituting
// DefaultLimit for non-positive values. The boolean reports whether limit was
// already within bounds.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= 0 {
		return min(DefaultLimit, max(maxLimit, 1)), false
	} else if limit > maxLimit && maxLimit > 0 {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}
