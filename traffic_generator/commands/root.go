package commands

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/config"
)

// NewRootCommand builds the flowgen command tree with its own viper
// instance. The root command generates a trace; "verify" checks one.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "flowgen",
		Short: "Generate flow arrival traces for network simulators",
		Long: `flowgen synthesizes a trace of flows (source, destination, size, start time)
whose sizes follow an empirical CDF and whose arrival rate fills the requested
fraction of every host link. Each host is an independent Poisson process.`,
		Example:       "  flowgen -c web_search_distribution.txt -n 320 -l 0.3 -b 100G -t 0.1",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetOutput(os.Stderr)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

			if cfgFile == "" {
				return nil
			}

			v.SetConfigFile(cfgFile)

			return v.ReadInConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := config.Load(v)
			if err != nil {
				return err
			}

			return Generate(options)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML file holding any of the flags below")

	flags := rootCmd.Flags()
	flags.IntP("hosts", "n", 0, "number of hosts")
	flags.Float64P("load", "l", config.DEFAULT_LOAD, "the fraction of every host link to fill with traffic")
	flags.StringP("bandwidth", "b", config.DEFAULT_BANDWIDTH, "the bandwidth of host link (G/M/K)")
	flags.Float64P("time", "t", config.DEFAULT_TIME, "the total run time in seconds")
	flags.StringP("cdf", "c", config.DEFAULT_CDF, "the file of the flow size cdf")
	flags.StringP("output", "o", config.DEFAULT_OUTPUT, "the output file, - for stdout")
	flags.Float64("base-time", config.DEFAULT_BASE_TIME, "the start time of the trace in seconds")
	flags.Uint16("port", config.DEFAULT_PORT, "destination port written on every flow")
	flags.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flags.String("manifest", "", "write a YAML description of the run to this file")
	flags.String("log-level", config.DEFAULT_LOG_LEVEL, "logrus level (debug, info, warn, error)")

	v.BindPFlags(flags)

	rootCmd.AddCommand(newVerifyCommand())

	return rootCmd
}
