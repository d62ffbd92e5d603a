package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
