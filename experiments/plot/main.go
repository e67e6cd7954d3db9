package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/nocturneagent"
	"github.com/unixpickle/nocturneagent/experiments"
)

type Flags struct {
	EnvFlags experiments.EnvFlags

	Scenes string
	Steps  int
	Size   int
	OutDir string
}

func main() {
	flags := &Flags{}
	flags.EnvFlags.AddFlags()
	flag.StringVar(&flags.Scenes, "plot", "", "comma-separated scenes (default: all)")
	flag.IntVar(&flags.Steps, "steps", nocturneagent.DefaultRecordSteps,
		"steps to record per scene")
	flag.IntVar(&flags.Size, "size", 512, "image size in pixels")
	flag.StringVar(&flags.OutDir, "outdir", "plots", "output directory")
	flag.Parse()
	log.Println("Run with arguments:", os.Args[1:])

	env, err := experiments.MakeAnalysisEnv(&flags.EnvFlags)
	must(err)
	defer env.Close()
	must(os.MkdirAll(flags.OutDir, 0755))

	var scenes []string
	if flags.Scenes != "" {
		scenes = strings.Split(flags.Scenes, ",")
	}
	for _, scene := range experiments.ScenesOrAll(env, scenes) {
		traj, err := nocturneagent.RecordScene(env, scene, flags.Steps)
		must(err)
		if traj == nil {
			log.Printf("skipping scene %s", scene)
			continue
		}
		outPath := filepath.Join(flags.OutDir,
			strings.TrimSuffix(scene, filepath.Ext(scene))+".png")
		f, err := os.Create(outPath)
		must(err)
		must(nocturneagent.PlotTrajectories(f, traj, flags.Size))
		f.Close()
		log.Printf("plotted %d agents to %s", len(traj.IDs), outPath)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
