package generator

import (
	"fmt"
	"math"

	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/generator/hosts"
	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/poisson"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

func New(options *GlobalOptions, sizes SizeSampler, rng *rand.Rand) (*FlowGenerator, error) {
	if sizes == nil || rng == nil {
		return nil, fmt.Errorf("%w: size sampler and random source are required", ErrInvalidConfiguration)
	}

	if options.BaseTime < 0 {
		return nil, fmt.Errorf("%w: base time %d is negative", ErrInvalidConfiguration, options.BaseTime)
	}

	// arrivals saturate at math.MaxInt64, which must stay past the horizon
	if options.Duration >= math.MaxInt64-options.BaseTime {
		return nil, fmt.Errorf("%w: base time %d plus duration %d overflows the clock", ErrInvalidConfiguration, options.BaseTime, options.Duration)
	}

	rate, err := DeriveRate(options.NumHosts, options.Load, options.Bandwidth, sizes.Mean(), options.Duration)
	if err != nil {
		return nil, err
	}

	return &FlowGenerator{
		options: options,
		sizes:   sizes,
		rng:     rng,
		rate:    rate,
	}, nil
}

// DeriveRate computes the per-host mean inter-arrival time, in nanoseconds,
// at which flows of meanSize bytes fill load of bandwidth, along with the
// expected number of flows over duration nanoseconds.
func DeriveRate(numHosts int, load, bandwidth, meanSize float64, duration int64) (Rate, error) {
	switch {
	case numHosts < MIN_HOSTS:
		return Rate{}, fmt.Errorf("%w: need at least %d hosts, got %d", ErrInvalidConfiguration, MIN_HOSTS, numHosts)
	case !(load > 0):
		return Rate{}, fmt.Errorf("%w: load must be positive, got %v", ErrInvalidConfiguration, load)
	case !(bandwidth > 0):
		return Rate{}, fmt.Errorf("%w: bandwidth must be positive, got %v", ErrInvalidConfiguration, bandwidth)
	case !(meanSize > 0):
		return Rate{}, fmt.Errorf("%w: mean flow size must be positive, got %v", ErrInvalidConfiguration, meanSize)
	case duration < 0:
		return Rate{}, fmt.Errorf("%w: duration must not be negative, got %d", ErrInvalidConfiguration, duration)
	}

	interArrivalMean := 1 / (bandwidth * load / BITS_PER_BYTE / meanSize) * NANOSECONDS

	estimatedFlows := math.Floor(float64(duration) / interArrivalMean * float64(numHosts))
	if !(estimatedFlows < MAX_ESTIMATED_FLOWS) {
		estimatedFlows = MAX_ESTIMATED_FLOWS
	}

	return Rate{
		InterArrivalMean: interArrivalMean,
		EstimatedFlows:   uint64(estimatedFlows),
	}, nil
}

func (fg *FlowGenerator) Rate() Rate {
	return fg.rate
}

func (fg *FlowGenerator) Horizon() int64 {
	return fg.options.BaseTime + fg.options.Duration
}

// Run simulates every host as an independent renewal process and writes the
// merged flow starts to sink in non-decreasing time order. Only the earliest
// pending arrival of each host is kept in memory.
func (fg *FlowGenerator) Run(sink Sink) (*Summary, error) {
	lam := fg.rate.InterArrivalMean
	horizon := fg.Horizon()

	arrivals := hosts.New(fg.options.NumHosts, func(int) int64 {
		return poisson.After(fg.options.BaseTime, poisson.Nanoseconds(fg.rng, lam))
	})

	summary := &Summary{}

	for arrivals.Len() > 0 {
		current := arrivals.Peek()

		nextArrival := poisson.After(current.NextArrival, poisson.Nanoseconds(fg.rng, lam))
		destination := fg.pickDestination(current.Host)

		if nextArrival > horizon {
			arrivals.Retire()
			summary.RetiredHosts++

			logrus.WithFields(logrus.Fields{
				"host":   current.Host,
				"time":   current.NextArrival,
				"active": arrivals.Len(),
			}).Debug("host retired")

			continue
		}

		event := FlowEvent{
			Source:      current.Host,
			Destination: destination,
			Size:        fg.drawSize(),
			StartTime:   current.NextArrival,
		}

		if err := sink.Write(&event); err != nil {
			return summary, fmt.Errorf("writing flow %d: %w", summary.Flows, err)
		}

		summary.add(&event)

		arrivals.Advance(nextArrival)
	}

	summary.OfferedLoad = fg.offeredLoad(summary)

	return summary, nil
}

// uniform over every host but source
func (fg *FlowGenerator) pickDestination(source int) int {
	destination := fg.rng.Intn(fg.options.NumHosts)
	for destination == source {
		destination = fg.rng.Intn(fg.options.NumHosts)
	}
	return destination
}

func (fg *FlowGenerator) drawSize() uint64 {
	size := math.Floor(fg.sizes.Sample(fg.rng))
	if !(size >= float64(MIN_FLOW_SIZE)) {
		return MIN_FLOW_SIZE
	}
	return uint64(size)
}

// offeredLoad is the fraction of the aggregate host bandwidth the generated
// bytes would occupy over the run.
func (fg *FlowGenerator) offeredLoad(summary *Summary) float64 {
	if fg.options.Duration <= 0 {
		return 0
	}

	capacity := fg.options.Bandwidth * float64(fg.options.NumHosts) * float64(fg.options.Duration) / NANOSECONDS

	return float64(summary.TotalBytes) * BITS_PER_BYTE / capacity
}

func (s *Summary) add(event *FlowEvent) {
	if s.Flows == 0 {
		s.FirstStart = event.StartTime
	}

	s.Flows++
	s.TotalBytes += event.Size
	s.LastStart = event.StartTime
}
