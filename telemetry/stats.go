package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population at window end
	Population int     `csv:"population"`
	Settled    int     `csv:"settled"`
	SettledPct float64 `csv:"settled_pct"`
	InTransit  int     `csv:"in_transit"` // Agents outside every container

	// Events during window
	Crossings      int `csv:"crossings"`       // Agents passing an open or permeable boundary
	WallBlocks     int `csv:"wall_blocks"`     // Hard-contact corrections applied
	Fallbacks      int `csv:"fallbacks"`       // Degenerate tessellations substituted
	CollisionPairs int `csv:"collision_pairs"` // Pairwise separation corrections
	Pours          int `csv:"pours"`           // Pour gestures triggered

	// Pressure distribution (sampled at window end). At equilibrium the
	// mean sits near 1; a compressed population drifts above it.
	PressureMean float64 `csv:"pressure_mean"`
	PressureStd  float64 `csv:"pressure_std"`
	PressureP10  float64 `csv:"pressure_p10"`
	PressureP50  float64 `csv:"pressure_p50"`
	PressureP90  float64 `csv:"pressure_p90"`

	// Mean agent speed at window end
	SpeedMean float64 `csv:"speed_mean"`
}

// Distribution summarizes a sample: mean, standard deviation, and the 10th,
// 50th and 90th percentiles. Zero values for an empty sample.
func Distribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("population", s.Population),
		slog.Int("settled", s.Settled),
		slog.Float64("settled_pct", s.SettledPct),
		slog.Int("in_transit", s.InTransit),
		slog.Int("crossings", s.Crossings),
		slog.Int("wall_blocks", s.WallBlocks),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("collision_pairs", s.CollisionPairs),
		slog.Int("pours", s.Pours),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("pressure_std", s.PressureStd),
		slog.Float64("pressure_p10", s.PressureP10),
		slog.Float64("pressure_p50", s.PressureP50),
		slog.Float64("pressure_p90", s.PressureP90),
		slog.Float64("speed_mean", s.SpeedMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"population", s.Population,
		"settled", s.Settled,
		"settled_pct", s.SettledPct,
		"in_transit", s.InTransit,
		"crossings", s.Crossings,
		"wall_blocks", s.WallBlocks,
		"fallbacks", s.Fallbacks,
		"collision_pairs", s.CollisionPairs,
		"pours", s.Pours,
		"pressure_mean", s.PressureMean,
		"pressure_std", s.PressureStd,
		"pressure_p10", s.PressureP10,
		"pressure_p50", s.PressureP50,
		"pressure_p90", s.PressureP90,
		"speed_mean", s.SpeedMean,
	)
}
