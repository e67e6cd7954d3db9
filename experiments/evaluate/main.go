package main

import (
	"flag"
	"log"
	"os"

	"github.com/unixpickle/nocturneagent"
	"github.com/unixpickle/nocturneagent/experiments"
)

type Flags struct {
	EnvFlags experiments.EnvFlags
	Mode     experiments.ModeFlag

	NumEpisodes   int
	PolicyFile    string
	IndexFile     string
	OutFile       string
	Deterministic bool
}

func main() {
	flags := &Flags{}
	flags.EnvFlags.AddFlags()
	flags.Mode.AddFlag()
	flag.IntVar(&flags.NumEpisodes, "episodes", 100, "number of episodes")
	flag.StringVar(&flags.PolicyFile, "policy", "policy.gob", "saved policy (policy mode)")
	flag.StringVar(&flags.IndexFile, "index", "", "optional scene index for metadata")
	flag.StringVar(&flags.OutFile, "out", "summary.csv", "output CSV file")
	flag.BoolVar(&flags.Deterministic, "deterministic", true,
		"take the most likely policy action")
	flag.Parse()
	log.Println("Run with arguments:", os.Args[1:])

	log.Println("Creating environment...")
	env, err := experiments.MakeEnv(&flags.EnvFlags)
	must(err)
	defer env.Close()

	evaluator := &nocturneagent.Evaluator{
		Env:           env,
		Oracle:        env,
		Mode:          flags.Mode.Mode,
		Deterministic: flags.Deterministic,
	}
	if flags.Mode.Mode == nocturneagent.PolicyMode {
		policy, err := nocturneagent.LoadPolicy(flags.PolicyFile)
		must(err)
		log.Println("Loaded policy from file.")
		evaluator.Policy = policy
	}
	if flags.IndexFile != "" {
		index, err := nocturneagent.LoadSceneIndex(flags.IndexFile)
		must(err)
		log.Printf("Loaded metadata for %d scenes.", len(index))
		evaluator.SceneMetadata = index.Metadata()
	}

	log.Printf("Evaluating %d episodes in %s mode...", flags.NumEpisodes,
		flags.Mode.Mode)
	summaries, err := evaluator.Evaluate(flags.NumEpisodes)
	must(err)

	f, err := os.Create(flags.OutFile)
	must(err)
	defer f.Close()
	must(nocturneagent.WriteSummariesCSV(f, summaries))

	means := nocturneagent.Means(summaries)
	log.Printf("mean: goal_rate=%f off_road=%f veh_veh_collision=%f",
		means.GoalAchieved, means.OffRoad, means.Collisions)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
