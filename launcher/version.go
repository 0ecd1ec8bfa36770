package launcher

import (
	"strconv"
	"strings"
)

// Compare orders two dotted numeric version strings. It returns -1 if a < b,
// 0 if equal, 1 if a > b. Missing segments count as zero, so "2.0" == "2.0.0".
// Non-numeric segments count as zero.
func Compare(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av := segment(as, i)
		bv := segment(bs, i)
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether version v satisfies the minimum version min.
func AtLeast(v, min string) bool {
	return Compare(v, min) >= 0
}

func segment(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}
