// The program move-env builds a linked program database from a set of
// deployed Move packages and prints a summary of what it loaded.
package main

import (
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kingpin"

	"github.com/sourcegraph/move-env/internal/loader"
	"github.com/sourcegraph/move-env/internal/model"
	"github.com/sourcegraph/move-env/internal/stage"
)

const version = "0.1.0"

func init() {
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(os.Stdout)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func realMain() error {
	var (
		packagesFile   string
		verbose        bool
		veryVerbose    bool
		noAnimations   bool
		keepRawModules bool
	)

	app := kingpin.New("move-env", "move-env loads deployed Move packages into a linked program database.").Version(version)
	app.HelpFlag.Short('h')
	app.VersionFlag.Short('v')
	app.HelpFlag.Hidden()

	app.Flag("packages", "Path to a gob-encoded []model.MovePackage file.").Short('p').Required().StringVar(&packagesFile)
	app.Flag("verbose", "Print the name of each stage as it runs.").Short('V').BoolVar(&verbose)
	app.Flag("very-verbose", "Print elapsed time per stage, at higher detail.").BoolVar(&veryVerbose)
	app.Flag("no-animations", "Disable the animated stage throbber.").BoolVar(&noAnimations)
	app.Flag("keep-raw-modules", "Retain each module's deserialized bytecode after loading.").BoolVar(&keepRawModules)

	if _, err := app.Parse(os.Args[1:]); err != nil {
		return err
	}

	f, err := os.Open(packagesFile)
	if err != nil {
		return fmt.Errorf("open packages file: %w", err)
	}
	defer f.Close()

	var packages []model.MovePackage
	if err := gob.NewDecoder(f).Decode(&packages); err != nil {
		return fmt.Errorf("decode packages file: %w", err)
	}

	verbosity := stage.DefaultOutput
	if veryVerbose {
		verbosity = stage.VerboseOutput
	}

	cfg := loader.LoaderConfig{
		KeepRawModules: keepRawModules,
		Progress: stage.Options{
			Verbosity:      verbosity,
			ShowAnimations: !noAnimations,
		},
	}
	if !verbose && !veryVerbose {
		cfg.Progress.Verbosity = stage.NoOutput
	}

	start := time.Now()
	env, err := loader.Build(packages, cfg)
	if err != nil {
		return fmt.Errorf("build environment: %w", err)
	}

	fmt.Printf("%d package(s), %d module(s), %d struct(s), %d function(s)\n",
		len(env.Packages), len(env.Modules), len(env.Structs), len(env.Functions))
	fmt.Println("Loaded in", time.Since(start))
	return nil
}
