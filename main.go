package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/samuelfneumann/handreach/environment/envconfig"
	"github.com/samuelfneumann/handreach/environment/render"
	"github.com/samuelfneumann/handreach/experiment"
	"github.com/samuelfneumann/handreach/experiment/tracker"
	"github.com/samuelfneumann/handreach/experiment/trackers"
	"github.com/samuelfneumann/handreach/utils/progressbar"
	"gonum.org/v1/gonum/floats"
)

func main() {
	configPath := flag.String("config", "", "YAML or JSON environment "+
		"config file (default: the -env preset)")
	envName := flag.String("env", string(envconfig.SingleFinger),
		"environment preset: SingleFinger or Fingers")
	seed := flag.Uint64("seed", 0, "random seed, overriding the config's seed "+
		"when given")
	steps := flag.Uint("steps", 5_000, "total environment steps to run")
	hold := flag.Int("hold", 10, "steps each random action is held for")
	returnsPath := flag.String("returns", "./returns.bin", "gob file of "+
		"episodic returns")
	lengthsPath := flag.String("lengths", "", "gob file of episode lengths")
	dbPath := flag.String("db", "", "SQLite database of episode summaries")
	framesDir := flag.String("frames", "", "directory to save PNG frames to")
	every := flag.Int("every", 25, "steps between saved frames")
	progress := flag.Bool("progress", true, "display a progress bar")
	flag.Parse()

	// Create the environment config
	var envConf envconfig.Config
	var err error
	if *configPath != "" {
		envConf, err = envconfig.Load(*configPath)
	} else {
		envConf, err = envconfig.NewConfig(envconfig.EnvName(*envName), 1)
	}
	if err != nil {
		log.Fatalf("could not configure environment: %v", err)
	}
	if isSet(flag.CommandLine, "seed") {
		envConf.Seed = *seed
	}

	// Create the experiment
	conf := experiment.Config{
		Type:     experiment.OnlineExp,
		MaxSteps: *steps,
		EnvConf:  envConf,
		Hold:     *hold,
	}
	returns := trackers.NewReturn(*returnsPath)
	e, world, err := conf.CreateExp(envConf.Seed, returns)
	if err != nil {
		log.Fatalf("could not create experiment: %v", err)
	}
	log.Printf("created %v environment: %v fingers, %v joints, seed %v",
		envConf.Environment, envConf.Hand.Fingers, envConf.Hand.Joints,
		envConf.Seed)

	if *lengthsPath != "" {
		e.Register(trackers.NewEpisodeLength(*lengthsPath))
	}

	if *dbPath != "" {
		store, err := trackers.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("could not open episode store: %v", err)
		}
		defer store.Close()

		confJSON, err := json.Marshal(envConf.Hand)
		if err != nil {
			log.Fatalf("could not encode config: %v", err)
		}
		id, err := store.BeginRun(string(envConf.Environment),
			string(confJSON), envConf.Seed)
		if err != nil {
			log.Fatalf("could not begin run: %v", err)
		}
		log.Printf("recording episodes to %v as run %v", *dbPath, id)
		e.Register(store)
	}

	if *framesDir != "" {
		rec, err := render.NewRecorder(world, render.NewDefault(), *framesDir,
			*every)
		if err != nil {
			log.Fatalf("could not create recorder: %v", err)
		}
		e.Register(rec)
	}

	if *progress {
		e.SetProgressBar(progressbar.NewManualProgressBar(os.Stderr, 50,
			int(*steps)))
	}

	// Run the experiment
	if err := e.Run(); err != nil {
		log.Fatalf("could not run experiment: %v", err)
	}
	if err := e.Save(); err != nil {
		log.Fatalf("could not save data: %v", err)
	}

	data, err := tracker.LoadData[float64](*returnsPath)
	if err != nil {
		log.Fatalf("could not load returns: %v", err)
	}
	if len(data) == 0 {
		log.Printf("ran %v steps, no episode finished", e.Steps())
		return
	}
	log.Printf("ran %v steps over %v finished episodes, mean return %.3f",
		e.Steps(), len(data), floats.Sum(data)/float64(len(data)))
}

// isSet returns whether the flag called name was given on the command
// line, even if it was given its default value
func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
