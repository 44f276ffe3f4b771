package rules

import (
	"fmt"
	"io"
	"sort"
	"time"
)

func nowNano() int64 { return time.Now().UnixNano() }

// PrintStat writes a call-count/cumulative-time report for rules, sorted
// by descending time, the way misc/rules.py's printStat does. Rules
// constructed without Options.Stat report zero time regardless of how
// often they matched.
func PrintStat(w io.Writer, rules []*Rule) {
	sorted := append([]*Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeMs > sorted[j].TimeMs
	})
	fmt.Fprintf(w, "%-32s %10s %10s\n", "rule", "count", "time (ms)")
	var totalTime float64
	var totalCount int
	for _, r := range sorted {
		name := r.Ident
		if name == "" {
			name = r.RawPattern
		}
		fmt.Fprintf(w, "%-32s %10d %10.1f\n", name, r.Count, r.TimeMs)
		totalTime += r.TimeMs
		totalCount += r.Count
	}
	fmt.Fprintf(w, "%-32s %10d %10.1f\n", "TOTAL", totalCount, totalTime)
}
