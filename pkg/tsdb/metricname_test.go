package tsdb

import "testing"

func TestGenerateMetricAbsorbedTagKey(t *testing.T) {
	got := GenerateMetric("cpu", map[string]string{
		"machine_id": "m",
		"host":       "h",
		"cpu":        "cpu0",
	})
	if want := "cpu.cpu0"; got != want {
		t.Errorf("GenerateMetric() = %q, want %q", got, want)
	}
}

func TestGenerateMetricMultipleTags(t *testing.T) {
	got := GenerateMetric("disk", map[string]string{
		"machine_id": "m",
		"host":       "h",
		"device":     "/dev/sda",
		"fstype":     "ext4",
	})
	if want := "disk.device-dev-sda.fstype-ext4"; got != want {
		t.Errorf("GenerateMetric() = %q, want %q", got, want)
	}
}

func TestGenerateMetricNoExtraTags(t *testing.T) {
	got := GenerateMetric("uptime", map[string]string{
		"machine_id": "m",
		"host":       "h",
	})
	if want := "uptime"; got != want {
		t.Errorf("GenerateMetric() = %q, want %q", got, want)
	}
}

func TestGenerateMetricIsPure(t *testing.T) {
	tags := map[string]string{"machine_id": "m", "host": "h", "cpu": "cpu0"}
	first := GenerateMetric("cpu", tags)
	second := GenerateMetric("cpu", tags)
	if first != second {
		t.Errorf("GenerateMetric is not pure: %q != %q", first, second)
	}
}

func TestIsRegexPattern(t *testing.T) {
	cases := map[string]bool{
		"host1":       false,
		"cpu.value":   false,
		"host.*":      true,
		"host[0-9]+":  true,
		"":            false,
	}
	for input, want := range cases {
		if got := isRegexPattern(input); got != want {
			t.Errorf("isRegexPattern(%q) = %v, want %v", input, got, want)
		}
	}
}
