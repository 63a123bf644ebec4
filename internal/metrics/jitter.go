package metrics

import (
	"math"
	"time"

	"github.com/san-kum/phantomgo/internal/dynamo"
)

// TickJitter is the mean absolute deviation of the measured tick period
// from the nominal one, in ms. The first tick has no period and is skipped.
type TickJitter struct {
	nominal float64
	sum     float64
	worst   float64
	samples int
}

func NewTickJitter(nominal time.Duration) *TickJitter {
	return &TickJitter{nominal: nominal.Seconds()}
}

func (j *TickJitter) Name() string { return "tick_jitter_ms" }

func (j *TickJitter) Observe(o dynamo.Observation) {
	if o.Period <= 0 {
		return
	}
	dev := math.Abs(o.Period-j.nominal) * 1000
	j.sum += dev
	j.worst = max(j.worst, dev)
	j.samples++
}

func (j *TickJitter) Value() float64 {
	if j.samples == 0 {
		return 0
	}
	return j.sum / float64(j.samples)
}

// Worst returns the largest single deviation in ms.
func (j *TickJitter) Worst() float64 { return j.worst }

// SetNominal changes the expected period and clears the history.
func (j *TickJitter) SetNominal(nominal time.Duration) {
	j.nominal = nominal.Seconds()
	j.Reset()
}

func (j *TickJitter) Reset() {
	j.sum = 0
	j.worst = 0
	j.samples = 0
}
