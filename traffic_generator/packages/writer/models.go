package writer

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
)

// ErrMalformedTrace is returned by Read for traces whose count header does
// not match their body.
var ErrMalformedTrace = errors.New("malformed trace")

const (
	// PRIORITY_GROUP is the fixed third column of every flow line.
	PRIORITY_GROUP = 3
	DEFAULT_PORT   = 100
	TIME_DECIMALS  = 9
	STDOUT         = "-"

	MAX_PREALLOCATED_FLOWS uint64 = 1 << 16
)

type WriterRegister struct {
	Source      uint32
	Destination uint32
	Port        uint16
	Size        uint64
	StartTime   float64 // seconds
}

// Writer stages a trace body in a temporary file and publishes it, prefixed
// by the exact flow count, only once every flow has been written.
type Writer struct {
	filename  string
	body      *os.File
	csvWriter *csv.Writer
	count     uint64
	stdout    io.Writer
	closed    bool
}

// Manifest records how a trace was produced.
type Manifest struct {
	Trace            string  `yaml:"trace"`
	Distribution     string  `yaml:"distribution"`
	Hosts            int     `yaml:"hosts"`
	Load             float64 `yaml:"load"`
	Bandwidth        float64 `yaml:"bandwidth_bps"`
	Duration         float64 `yaml:"duration_seconds"`
	BaseTime         float64 `yaml:"base_time_seconds"`
	Port             uint16  `yaml:"port"`
	Seed             uint64  `yaml:"seed"`
	MeanFlowSize     float64 `yaml:"mean_flow_size_bytes"`
	InterArrivalMean float64 `yaml:"inter_arrival_mean_ns"`
	EstimatedFlows   uint64  `yaml:"estimated_flows"`
	Flows            uint64  `yaml:"flows"`
	TotalBytes       uint64  `yaml:"total_bytes"`
	OfferedLoad      float64 `yaml:"offered_load"`
}

// TraceStats summarizes a trace read back from disk.
type TraceStats struct {
	Flows      uint64
	TotalBytes uint64
	Hosts      int
	FirstStart float64
	LastStart  float64
}
