package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/unixpickle/nocturneagent"
	"github.com/unixpickle/nocturneagent/experiments"
	"github.com/unixpickle/rip"
	"github.com/unixpickle/weakai/idtrees"
)

type Flags struct {
	EnvFlags experiments.EnvFlags

	TreesPerRound  int
	NumRounds      int
	SampleFrac     float64
	Epsilon        float64
	ValidationFrac float64
	EvalEpisodes   int
	Seed           int64
	SaveFile       string
}

func main() {
	flags := &Flags{}
	flags.EnvFlags.AddFlags()
	flag.IntVar(&flags.TreesPerRound, "trees", 10, "trees added per round")
	flag.IntVar(&flags.NumRounds, "rounds", 0, "training rounds (0 runs until Ctrl+C)")
	flag.Float64Var(&flags.SampleFrac, "frac", 1, "fraction of demos sampled per tree")
	flag.Float64Var(&flags.Epsilon, "epsilon", 0.01, "policy epsilon")
	flag.Float64Var(&flags.ValidationFrac, "validation", 0.1,
		"fraction of demos held out")
	flag.IntVar(&flags.EvalEpisodes, "eval", 0, "policy mode episodes to run after training")
	flag.Int64Var(&flags.Seed, "seed", time.Now().UnixNano(), "random seed")
	flag.StringVar(&flags.SaveFile, "out", "policy.gob", "file for saved policy")
	flag.Parse()
	log.Println("Run with arguments:", os.Args[1:])

	log.Println("Creating environment...")
	env, err := experiments.MakeEnv(&flags.EnvFlags)
	must(err)
	defer env.Close()

	demos, err := experiments.GatherDemonstrations(env)
	must(err)
	gen := rand.New(rand.NewSource(flags.Seed))
	train, validation := nocturneagent.SplitDemonstrations(gen, demos,
		flags.ValidationFrac)
	log.Printf("split: train=%d validation=%d", len(train), len(validation))

	cloner := &nocturneagent.Cloner{
		NumTrees:    flags.TreesPerRound,
		NumFeatures: env.Config.ObservationSize(),
		SampleFrac:  flags.SampleFrac,
		Rand:        gen,
	}
	policy := &nocturneagent.ForestPolicy{
		Classifier: idtrees.Forest{},
		NumActions: env.ActionGrid().NumActions(),
		Epsilon:    flags.Epsilon,
	}

	// Train on a background goroutine so that we can
	// listen for Ctrl+C on the main goroutine.
	var trainLock sync.Mutex
	doneChan := make(chan struct{})
	go func() {
		defer close(doneChan)
		for round := 0; flags.NumRounds == 0 || round < flags.NumRounds; round++ {
			forest := append(policy.Classifier.(idtrees.Forest), cloner.Train(train)...)

			trainLock.Lock()
			policy.Classifier = forest
			trainStats := nocturneagent.EvaluateClone(policy, train)
			validStats := nocturneagent.EvaluateClone(policy, validation)
			log.Printf("round %d: trees=%d train_nll=%f train_acc=%f "+
				"valid_nll=%f valid_acc=%f", round, len(forest),
				trainStats.NLL, trainStats.Accuracy,
				validStats.NLL, validStats.Accuracy)
			must(nocturneagent.SavePolicy(flags.SaveFile, policy))
			trainLock.Unlock()
		}
	}()

	log.Println("Running. Press Ctrl+C to stop.")
	select {
	case <-doneChan:
	case <-rip.NewRIP().Chan():
		// Avoid the race condition where we save during
		// exit.
		trainLock.Lock()
		return
	}

	if flags.EvalEpisodes > 0 {
		log.Printf("Evaluating %d episodes...", flags.EvalEpisodes)
		evaluator := &nocturneagent.Evaluator{
			Env:           env,
			Oracle:        env,
			Mode:          nocturneagent.PolicyMode,
			Policy:        policy,
			Deterministic: true,
		}
		summaries, err := evaluator.Evaluate(flags.EvalEpisodes)
		must(err)
		means := nocturneagent.Means(summaries)
		log.Printf("mean: goal_rate=%f off_road=%f veh_veh_collision=%f",
			means.GoalAchieved, means.OffRoad, means.Collisions)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
