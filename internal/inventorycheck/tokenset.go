package inventorycheck

import (
	"math"
	"sort"
	"strings"
)

// TokenSetRatio scores the similarity of the word sets of a and b in
// [0, 100]. Both strings are split on whitespace into token sets; the
// sorted intersection and the sorted remainder of each side are joined
// back into strings and the best pairwise subsequence ratio wins. The
// score is robust to word reordering and repeated tokens.
func TokenSetRatio(a, b string) int {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var intersect, onlyA, onlyB []string
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			intersect = append(intersect, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tokensB {
		if _, ok := tokensA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(intersect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(intersect, " ")
	combinedA := joinNonEmpty(base, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(base, strings.Join(onlyB, " "))

	best := subsequenceRatio(base, combinedA)
	if r := subsequenceRatio(base, combinedB); r > best {
		best = r
	}
	if r := subsequenceRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// subsequenceRatio is round(100 * 2*LCS / (len(a)+len(b))) over runes.
func subsequenceRatio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	lcs := lcsLength(ra, rb)
	return int(math.Round(200 * float64(lcs) / float64(total)))
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
