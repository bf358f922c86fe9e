package memory

import (
	"bufio"
	"os"
	"strings"
)

// DefaultCategories are offered when no categories file is present.
var DefaultCategories = []string{"Housing", "Transport", "Health", "Food", "Education", "Other"}

// Categories returns the suggestion list for the transaction form, read from
// path one entry per line. Blank lines and lines starting with '#' are
// skipped. A missing or empty file yields DefaultCategories.
func Categories(path string) []string {
	cats := readLines(path)
	if len(cats) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return cats
}

func readLines(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
