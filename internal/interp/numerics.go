package interp

// Integer shifts mask the count by 31 (int) or 63 (long), per spec
// section 4.10.
func shiftMask32(n int32) uint { return uint(n) & 31 }
func shiftMask64(n int32) uint { return uint(n) & 63 }

// fcmp implements fcmpl/fcmpg: -1/0/1 by IEEE-754 ordering, with
// nanResult (-1 for fcmpl, +1 for fcmpg) returned when either operand
// is NaN.
func fcmp(a, b float32, nanResult int32) int32 {
	if a != a || b != b { // either is NaN
		return nanResult
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func dcmp(a, b float64, nanResult int32) int32 {
	if a != a || b != b {
		return nanResult
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func lcmp(a, b int64) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
