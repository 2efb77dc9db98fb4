package tsdb

import (
	"log"
	"os"
	"strconv"
)

// ModesFromEnv reads AGGREGATE_MINUTE, AGGREGATE_HOUR and AGGREGATE_DAY,
// defaulting each to mode 1 and logging (without failing) any value
// outside {0,1,2}.
func ModesFromEnv() Modes {
	return Modes{
		Minute: modeFromEnv("AGGREGATE_MINUTE"),
		Hour:   modeFromEnv("AGGREGATE_HOUR"),
		Day:    modeFromEnv("AGGREGATE_DAY"),
	}
}

func modeFromEnv(name string) int {
	const defaultMode = 1
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return defaultMode
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > 2 {
		log.Printf("tsdb: %s=%q is not one of {0,1,2}, defaulting to %d", name, raw, defaultMode)
		return defaultMode
	}
	return v
}
