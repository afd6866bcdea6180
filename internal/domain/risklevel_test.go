package domain

import (
	"encoding/json"
	"testing"
)

func TestRiskLevelOrdering(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			t.Errorf("%s must be below %s", levels[i-1], levels[i])
		}
	}
}

func TestRiskLevelString(t *testing.T) {
	cases := map[RiskLevel]string{
		LevelLow:      "LOW",
		LevelMedium:   "MEDIUM",
		LevelHigh:     "HIGH",
		LevelCritical: "CRITICAL",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
	if got := RiskLevel(42).String(); got != "RiskLevel(42)" {
		t.Errorf("out-of-range String() = %q", got)
	}
}

func TestParseRiskLevel(t *testing.T) {
	for _, level := range Levels() {
		parsed, err := ParseRiskLevel(level.String())
		if err != nil {
			t.Fatalf("ParseRiskLevel(%s) failed: %v", level, err)
		}
		if parsed != level {
			t.Errorf("ParseRiskLevel(%s) = %s", level, parsed)
		}
	}
	if _, err := ParseRiskLevel("low"); err == nil {
		t.Error("lower-case names must not parse")
	}
}

func TestRiskLevelJSON(t *testing.T) {
	data, err := json.Marshal(LevelHigh)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"HIGH"` {
		t.Errorf("Marshal = %s", data)
	}

	var level RiskLevel
	if err := json.Unmarshal([]byte(`"CRITICAL"`), &level); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if level != LevelCritical {
		t.Errorf("Unmarshal = %s", level)
	}

	if err := json.Unmarshal([]byte(`"EXTREME"`), &level); err == nil {
		t.Error("unknown level must not decode")
	}
}

func TestThresholdsClassify(t *testing.T) {
	th := Thresholds{Low: 0, Medium: 1, High: 2, Critical: 3}
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{0, LevelLow},
		{1, LevelMedium},
		{2, LevelHigh},
		{3, LevelCritical},
		{7, LevelCritical},
	}
	for _, c := range cases {
		if got := th.Classify(c.score); got != c.want {
			t.Errorf("Classify(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}
