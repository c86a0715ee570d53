package ranking

// similarity computes a normalized edit-distance score in [0, 1] where
// 1 means the strings are identical after normalization.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with a rolling single-row table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur := row[j]
			min := prev + cost
			if row[j]+1 < min {
				min = row[j] + 1
			}
			if row[j-1]+1 < min {
				min = row[j-1] + 1
			}
			row[j] = min
			prev = cur
		}
	}
	return row[len(b)]
}
