package dashboard

import "strings"

// StatusSymbol is the glyph shown next to a sensor reading.
func StatusSymbol(status string) string {
	switch status {
	case StatusGood:
		return "✓"
	case StatusWarning:
		return "!"
	case StatusBad:
		return "✗"
	}
	return "-"
}

type Tier int

const (
	TierAward Tier = iota
	TierMedal
	TierTrophy
)

func (t Tier) String() string {
	switch t {
	case TierMedal:
		return "medal"
	case TierTrophy:
		return "trophy"
	}
	return "award"
}

// BadgeTier picks the badge icon from its name.
func BadgeTier(name string) Tier {
	switch {
	case strings.Contains(name, "初心者"), strings.Contains(name, "Bronze"):
		return TierMedal
	case strings.Contains(name, "博士"), strings.Contains(name, "Gold"), strings.Contains(name, "マスター"):
		return TierTrophy
	}
	return TierAward
}

// PlaceholderBed stands in for a class without beds.
func PlaceholderBed() Bed {
	return Bed{
		Name:   "-",
		Status: StatusBad,
		Sensors: Sensors{
			Temperature: SensorStatus{Status: StatusBad},
			Humidity:    SensorStatus{Status: StatusBad},
		},
	}
}

// DisplayBeds returns beds, or a single placeholder when there are none.
func DisplayBeds(beds []Bed) []Bed {
	if len(beds) == 0 {
		return []Bed{PlaceholderBed()}
	}
	return beds
}

// AcquiredCount returns how many badges the class earned.
func AcquiredCount(badges []Badge) int {
	n := 0
	for _, b := range badges {
		if b.Acquired {
			n++
		}
	}
	return n
}
