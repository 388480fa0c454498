package farm

import "github.com/trezcool/hydrofarm/core/dashboard"

// band is a good range surrounded by a warning margin.
type band struct {
	warnLow, goodLow, goodHigh, warnHigh float64
}

var (
	temperatureBand = band{warnLow: 15, goodLow: 18, goodHigh: 28, warnHigh: 32}
	humidityBand    = band{warnLow: 30, goodLow: 40, goodHigh: 70, warnHigh: 80}
)

func (b band) status(v *float64) string {
	switch {
	case v == nil:
		return dashboard.StatusBad
	case *v >= b.goodLow && *v <= b.goodHigh:
		return dashboard.StatusGood
	case *v >= b.warnLow && *v <= b.warnHigh:
		return dashboard.StatusWarning
	default:
		return dashboard.StatusBad
	}
}

// TemperatureStatus grades a reading in °C. A missing reading is bad.
func TemperatureStatus(v *float64) string { return temperatureBand.status(v) }

// HumidityStatus grades a relative humidity reading in %.
func HumidityStatus(v *float64) string { return humidityBand.status(v) }
