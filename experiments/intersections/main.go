package main

import (
	"flag"
	"log"
	"os"

	"github.com/unixpickle/nocturneagent"
	"github.com/unixpickle/nocturneagent/experiments"
)

type Flags struct {
	EnvFlags      experiments.EnvFlags
	AnalysisFlags experiments.AnalysisFlags
}

func main() {
	flags := &Flags{}
	flags.EnvFlags.AddFlags()
	flags.AnalysisFlags.AddFlags()
	flag.Parse()
	log.Println("Run with arguments:", os.Args[1:])

	log.Println("Creating environment...")
	env, err := experiments.MakeAnalysisEnv(&flags.EnvFlags)
	must(err)
	defer env.Close()

	analyzer := &nocturneagent.Analyzer{
		Env:        env,
		Steps:      flags.AnalysisFlags.Steps,
		TimeWindow: flags.AnalysisFlags.TimeWindow,
	}
	index, err := analyzer.BuildIndex(env.Files(), flags.AnalysisFlags.IndexFile)
	must(err)

	var total int
	for _, stats := range index {
		total += stats.TotalIntersectingPaths
	}
	log.Printf("indexed %d scenes with %d intersecting paths", len(index), total)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
