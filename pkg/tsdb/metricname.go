package tsdb

import (
	"regexp"
	"sort"
	"strings"
)

var (
	runDashes = regexp.MustCompile(`-+`)
	runDots   = regexp.MustCompile(`\.+`)
)

// GenerateMetric derives the canonical metric string from a measurement
// and its tag set. machine_id and host are routed separately (the Writer
// uses machine_id as the resource), so any machine_id or host entry in
// tags is ignored here.
func GenerateMetric(measurement string, tags map[string]string) string {
	type kv struct{ k, v string }
	pairs := make([]kv, 0, len(tags))
	for k, v := range tags {
		if k == "machine_id" || k == "host" {
			continue
		}
		pairs = append(pairs, kv{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].k == measurement && pairs[j].k != measurement
	})

	metric := measurement
	for _, p := range pairs {
		t := strings.ReplaceAll(p.k, measurement, "")
		if t != "" {
			metric += "." + t
			if v := strings.ReplaceAll(p.v, measurement, ""); v != "" {
				metric += "-" + v
			}
		} else if p.v != "" {
			// Tag key fully absorbed into the measurement: keep the
			// original value so e.g. a "cpu" tag on measurement "cpu"
			// still yields "cpu.cpu0", not the uninformative "cpu.0".
			metric += "." + p.v
		}
	}

	metric = strings.ReplaceAll(metric, "/", "-")
	metric = runDashes.ReplaceAllString(metric, "-")
	metric = strings.ReplaceAll(metric, ".-", ".")
	metric = runDots.ReplaceAllString(metric, ".")
	return metric
}

// isRegexPattern distinguishes a literal metric/resource name from a
// regex expression: any character outside [A-Za-z0-9.] makes it a regex.
var literalAlphabet = regexp.MustCompile(`^[A-Za-z0-9.]*$`)

func isRegexPattern(s string) bool {
	return !literalAlphabet.MatchString(s)
}
