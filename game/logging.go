package game

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logWorldState logs a population summary.
func (g *Game) logWorldState() {
	var settled, inTransit, fallbacks int
	pressures := g.pressures[:0]
	speeds := g.speeds[:0]

	query := g.blobFilter.Query()
	for query.Next() {
		pos, vel, claim, cell, blob, target := query.Get()

		if blob.Settled {
			settled++
		}
		if target.Active && !target.Contains(pos.Vec) {
			inTransit++
		}
		if cell.Fallback {
			fallbacks++
		}
		pressures = append(pressures, claim.Pressure)
		speeds = append(speeds, r2.Norm(vel.Vec))
	}
	g.pressures = pressures
	g.speeds = speeds

	meanP, stdP := stat.MeanStdDev(pressures, nil)
	meanS := stat.Mean(speeds, nil)

	Logf("=== Tick %d ===", g.tick)
	Logf("Agents: %d (settled: %d, in transit: %d, fallback cells: %d)",
		len(pressures), settled, inTransit, fallbacks)
	Logf("Pressure: %.3f avg (stddev %.3f) | Speed: %.2f avg", meanP, stdP, meanS)
	Logf("")
}
