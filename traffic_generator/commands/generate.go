package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/config"
	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/distribution"
	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/generator"
	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/packages/writer"
)

// Generate writes one trace for options. Every input is validated before the
// output is touched, and a failed run leaves no trace behind.
func Generate(options *config.Options) error {
	logrus.SetLevel(options.LogLevelValue())

	cdf, err := distribution.ReadFile(options.CDF)
	if err != nil {
		return err
	}

	generatorOptions, err := options.GeneratorOptions()
	if err != nil {
		return err
	}

	seed := options.ResolveSeed()

	flowGenerator, err := generator.New(generatorOptions, cdf, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	rate := flowGenerator.Rate()

	logrus.WithFields(logrus.Fields{
		"hosts":              options.Hosts,
		"load":               options.Load,
		"bandwidth":          humanize.SI(generatorOptions.Bandwidth, "bps"),
		"mean_flow_size":     humanize.Bytes(uint64(cdf.Mean())),
		"inter_arrival_mean": fmt.Sprintf("%.0fns", rate.InterArrivalMean),
		"estimated_flows":    humanize.Comma(int64(rate.EstimatedFlows)),
		"seed":               seed,
	}).Info("generating flows")

	trace, err := writer.New(options.Output)
	if err != nil {
		return err
	}

	summary, err := flowGenerator.Run(generator.SinkFunc(func(event *generator.FlowEvent) error {
		return trace.Write(&writer.WriterRegister{
			Source:      uint32(event.Source),
			Destination: uint32(event.Destination),
			Port:        options.Port,
			Size:        event.Size,
			StartTime:   float64(event.StartTime) * 1e-9,
		})
	}))
	if err != nil {
		trace.Abort()
		return err
	}

	if err := trace.Close(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"output":       options.Output,
		"flows":        humanize.Comma(int64(summary.Flows)),
		"bytes":        humanize.Bytes(summary.TotalBytes),
		"offered_load": fmt.Sprintf("%.4f", summary.OfferedLoad),
	}).Info("trace written")

	if options.Manifest == "" {
		return nil
	}

	return writer.WriteManifest(options.Manifest, &writer.Manifest{
		Trace:            options.Output,
		Distribution:     options.CDF,
		Hosts:            options.Hosts,
		Load:             options.Load,
		Bandwidth:        generatorOptions.Bandwidth,
		Duration:         options.Time,
		BaseTime:         options.BaseTime,
		Port:             options.Port,
		Seed:             seed,
		MeanFlowSize:     cdf.Mean(),
		InterArrivalMean: rate.InterArrivalMean,
		EstimatedFlows:   rate.EstimatedFlows,
		Flows:            summary.Flows,
		TotalBytes:       summary.TotalBytes,
		OfferedLoad:      summary.OfferedLoad,
	})
}
