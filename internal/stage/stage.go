// Package stage reports the progress of internal/loader.Build as a sequence
// of named stages, adapted from the teacher indexer's progress reporter:
// the same animated-throbber-or-static-line choice, keyed off a verbosity
// level rather than a task counter, since Build's stages are a fixed
// pipeline rather than a variable-sized unit of work.
package stage

import (
	"fmt"
	"time"

	"github.com/efritz/pentimento"

	"github.com/sourcegraph/move-env/internal/util"
)

// Verbosity controls how much stage output Reporter prints.
type Verbosity int

const (
	NoOutput Verbosity = iota
	DefaultOutput
	VerboseOutput
)

// Options configures a Reporter.
type Options struct {
	Verbosity      Verbosity
	ShowAnimations bool
}

var ticker = pentimento.NewAnimatedString([]string{
	"⠸", "⠼",
	"⠴", "⠦",
	"⠧", "⠇",
	"⠏", "⠋",
	"⠙", "⠹",
}, time.Second/4)

var successPrefix = "✔"

// Reporter tracks progress through the named stages of a Build call.
type Reporter struct {
	opts Options
}

// New creates a Reporter with the given options.
func New(opts Options) *Reporter {
	return &Reporter{opts: opts}
}

// Stage runs fn, printing its name before and (depending on verbosity) its
// elapsed time after. A stage that returns an error is not retried; the
// caller decides whether to abort the remaining pipeline.
func (r *Reporter) Stage(name string, fn func() error) error {
	if r.opts.Verbosity == NoOutput {
		return fn()
	}
	if !r.opts.ShowAnimations {
		return r.stageStatic(name, fn)
	}
	return r.stageAnimated(name, fn)
}

func (r *Reporter) stageStatic(name string, fn func() error) error {
	start := time.Now()
	fmt.Printf("%s\n", name)
	err := fn()
	if err != nil {
		fmt.Printf("failed after %s: %s\n", util.HumanElapsed(start), err)
		return err
	}
	if r.opts.Verbosity > DefaultOutput {
		fmt.Printf("Finished in %s.\n\n", util.HumanElapsed(start))
	}
	return nil
}

func (r *Reporter) stageAnimated(name string, fn func() error) error {
	start := time.Now()
	fmt.Printf("%s %s... ", ticker, name)

	var stageErr error
	_ = pentimento.PrintProgress(func(printer *pentimento.Printer) error {
		defer func() { _ = printer.Reset() }()

		content := pentimento.NewContent()
		content.AddLine("%s %s...", ticker, name)
		printer.WriteContent(content)

		stageErr = fn()
		return nil
	})

	if stageErr != nil {
		fmt.Printf("failed after %s: %s\n", util.HumanElapsed(start), stageErr)
		return stageErr
	}

	if r.opts.Verbosity > DefaultOutput {
		fmt.Printf("%s %s... Done (%s)\n", successPrefix, name, util.HumanElapsed(start))
	} else {
		fmt.Printf("%s %s... Done\n", successPrefix, name)
	}
	return nil
}
