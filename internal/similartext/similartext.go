// Package similartext finds strings similar to a given one, to build
// "maybe you mean" hints into not-found error messages.
package similartext

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// distance is the Levenshtein edit distance between two strings.
func distance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}

			min := prev[j] + 1
			if cur[j-1]+1 < min {
				min = cur[j-1] + 1
			}
			if prev[j-1]+cost < min {
				min = prev[j-1] + cost
			}
			cur[j] = min
		}
		prev, cur = cur, prev
	}

	return prev[len(br)]
}

// Find returns a string of the form ", maybe you mean X?" with the names
// most similar to the one given, or an empty string when nothing is
// similar enough. A name is similar enough when its edit distance is at
// most half the length of the searched name.
func Find(names []string, name string) string {
	if len(name) == 0 || len(names) == 0 {
		return ""
	}

	minDistance := -1
	for _, n := range names {
		if d := distance(n, name); minDistance == -1 || d < minDistance {
			minDistance = d
		}
	}

	if minDistance > len(name)/2 {
		return ""
	}

	var similar []string
	for _, n := range names {
		if distance(n, name) == minDistance {
			similar = append(similar, n)
		}
	}

	return fmt.Sprintf(", maybe you mean %s?", strings.Join(similar, " or "))
}

// FindFromMap does the same as Find but taking the string keys of the
// given map as the candidate names. It panics if the argument is not a map
// keyed by strings.
func FindFromMap(m interface{}, name string) string {
	mv := reflect.ValueOf(m)
	if mv.Kind() != reflect.Map {
		panic("similartext: FindFromMap received a non-map value")
	}

	var names []string
	for _, k := range mv.MapKeys() {
		if k.Kind() != reflect.String {
			panic("similartext: FindFromMap received a map with non-string keys")
		}
		names = append(names, k.String())
	}
	sort.Strings(names)

	return Find(names, name)
}
