package vendormatch

// Similarity computes the matching-block ratio between two strings:
// twice the total length of the longest common matching blocks, divided by
// the combined length. Symmetric, 0-1, and 1.0 only for identical strings.
func Similarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}
	if s1 == s2 {
		return 1.0
	}
	a := []rune(s1)
	b := []rune(s2)
	matched := matchingBlockLength(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// matchingBlockLength finds the longest common substring, then recurses on
// the pieces to its left and right, summing the matched lengths.
func matchingBlockLength(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlockLength(a[:ai], b[:bi])
	total += matchingBlockLength(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
