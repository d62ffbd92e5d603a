package generator

import (
	"errors"

	"golang.org/x/exp/rand"
)

// ErrInvalidConfiguration is returned when the run parameters cannot drive
// the arrival simulation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

const (
	// NANOSECONDS scales seconds to the scheduler's time unit.
	NANOSECONDS   float64 = 1e9
	BITS_PER_BYTE float64 = 8
	MIN_HOSTS             = 2
	MIN_FLOW_SIZE uint64  = 1

	// MAX_ESTIMATED_FLOWS is the largest float64 below 2^64.
	MAX_ESTIMATED_FLOWS float64 = 1<<64 - 1<<11
)

type GlobalOptions struct {
	NumHosts  int
	Load      float64
	Bandwidth float64 // bits per second, per host
	Duration  int64   // nanoseconds
	BaseTime  int64   // nanoseconds
}

// SizeSampler is the empirical flow size distribution consumed by the
// generator.
type SizeSampler interface {
	Mean() float64
	Sample(rng *rand.Rand) float64
}

// FlowEvent is one flow start. StartTime is in nanoseconds.
type FlowEvent struct {
	Source      int
	Destination int
	Size        uint64
	StartTime   int64
}

// Sink receives flows in emission order.
type Sink interface {
	Write(event *FlowEvent) error
}

type SinkFunc func(event *FlowEvent) error

func (f SinkFunc) Write(event *FlowEvent) error { return f(event) }

// Rate is derived once per run and shared by every host.
type Rate struct {
	InterArrivalMean float64 // nanoseconds
	EstimatedFlows   uint64
}

type Summary struct {
	Flows        uint64
	TotalBytes   uint64
	RetiredHosts int
	FirstStart   int64
	LastStart    int64
	OfferedLoad  float64
}

type FlowGenerator struct {
	options *GlobalOptions
	sizes   SizeSampler
	rng     *rand.Rand
	rate    Rate
}
