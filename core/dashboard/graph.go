package dashboard

import (
	"sort"
	"time"
)

// NormalizeGraph moves every point into loc, drops the ones recorded after now and
// sorts the rest chronologically. Missing readings stay nil.
func NormalizeGraph(g Graph, loc *time.Location, now time.Time) Graph {
	if loc == nil {
		loc = time.UTC
	}
	points := make([]GraphPoint, 0, len(g.Data))
	for _, p := range g.Data {
		if p.RecordedAt.After(now) {
			continue
		}
		p.RecordedAt = p.RecordedAt.In(loc)
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].RecordedAt.Before(points[j].RecordedAt)
	})
	return Graph{Range: g.Range, Data: points}
}

// Series returns the non-nil readings picked by fn, for chart bounds.
func Series(g Graph, fn func(GraphPoint) *float64) []float64 {
	var vals []float64
	for _, p := range g.Data {
		if v := fn(p); v != nil {
			vals = append(vals, *v)
		}
	}
	return vals
}

func Temperature(p GraphPoint) *float64 { return p.Temperature }
func Humidity(p GraphPoint) *float64    { return p.Humidity }
