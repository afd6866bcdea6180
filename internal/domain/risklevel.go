package domain

import (
	"encoding/json"
	"fmt"
)

// RiskLevel classifies a scored interaction into one of four severity
// buckets. Levels are totally ordered: LOW < MEDIUM < HIGH < CRITICAL.
type RiskLevel int

const (
	LevelLow RiskLevel = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

// Levels returns all risk levels in ascending severity order.
func Levels() []RiskLevel {
	return []RiskLevel{LevelLow, LevelMedium, LevelHigh, LevelCritical}
}

func (l RiskLevel) String() string {
	if l < LevelLow || l > LevelCritical {
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
	return levelNames[l]
}

// ParseRiskLevel converts a level name ("LOW", "MEDIUM", "HIGH", "CRITICAL")
// to its RiskLevel value.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for i, name := range levelNames {
		if s == name {
			return RiskLevel(i), nil
		}
	}
	return LevelLow, fmt.Errorf("unknown risk level %q", s)
}

// MarshalJSON encodes the level as its upper-case name.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its upper-case name.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
