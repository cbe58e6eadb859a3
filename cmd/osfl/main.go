// Command osfl is the CLI driver for the toolchain: `osfl [options] <input_file> [more_files...]`
// reads one or more source files, concatenated in argument order, through
// the lex/parse/compile/execute pipeline, or with no input file drops into
// a line-edited REPL. Both surfaces are external collaborators per spec.md
// §1; this file is the concrete collaborator the core pipeline hands off to.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/akshatnamdeo/osfl/internal/config"
	"github.com/akshatnamdeo/osfl/internal/fileinput"
	"github.com/akshatnamdeo/osfl/internal/flushio"
	"github.com/akshatnamdeo/osfl/internal/logio"
	"github.com/akshatnamdeo/osfl/internal/panicerr"
)

const version = "osfl 0.1.0"

func main() {
	fs := flag.NewFlagSet("osfl", flag.ContinueOnError)
	var (
		outputFile string
		debug      bool
		noOptimize bool
		showVer    bool
	)
	fs.StringVar(&outputFile, "o", "", "set output file (reserved)")
	fs.BoolVar(&debug, "d", false, "enable debug diagnostics")
	fs.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	fs.BoolVar(&noOptimize, "no-optimize", false, "disable optimizations (reserved)")
	fs.BoolVar(&showVer, "v", false, "print version string and exit")
	fs.BoolVar(&showVer, "version", false, "print version string and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: osfl [options] <input_file> [more_files...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if showVer {
		fmt.Println(version)
		return
	}

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	cfg := config.New(
		config.WithOutputFile(outputFile),
		config.WithDebugMode(debug),
		config.WithOptimize(!noOptimize),
	)

	args := fs.Args()
	if len(args) == 0 {
		runREPL(&log, cfg)
		return
	}

	cfg.InputFile = args[0]
	src, err := readSources(args)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	out := flushio.NewWriteFlusher(os.Stdout)
	var logf func(string, ...interface{})
	if cfg.DebugMode {
		logf = log.Leveledf("TRACE")
	}

	runErr := panicerr.Recover("osfl", func() error {
		res, err := run(cfg, src, out, logf)
		if cfg.DebugMode && err == nil {
			printThroughput(os.Stderr, res)
		}
		return err
	})
	out.Flush()
	if runErr != nil {
		reportError(&log, runErr)
	}
}

// readSources opens every positional path in order and concatenates their
// contents into a single source buffer, using fileinput.Input's chained
// rune-reader queue (the same model gothird's core uses to splice its
// kernel source ahead of stdin) to drain each file in turn once the one
// before it hits EOF. A single input_file is the common case; extra
// positional args let a caller split a program across files (e.g. a shared
// prelude) without the compiler's own `import` resolution.
func readSources(paths []string) ([]byte, error) {
	var in fileinput.Input
	for _, p := range paths[1:] {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		in.Queue = append(in.Queue, f)
	}
	first, err := os.Open(paths[0])
	if err != nil {
		return nil, err
	}
	in.Queue = append([]io.Reader{first}, in.Queue...)

	var buf bytes.Buffer
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			if err == io.EOF {
				return buf.Bytes(), nil
			}
			return nil, err
		}
		buf.WriteRune(r)
	}
}

// reportError prints the single diagnostic line spec.md §6.1 requires,
// colorized red when stderr is a terminal and left plain otherwise (colorizing
// never changes the line's plain-text contents).
func reportError(log *logio.Logger, err error) {
	red := color.New(color.FgRed)
	msg := err.Error()
	if color.NoColor {
		log.Errorf("%s", msg)
		return
	}
	log.Errorf("%s", red.Sprint(msg))
}

// printThroughput writes the debug-mode instruction-count/rate summary at
// halt (SPEC_FULL.md's go-humanize wiring), e.g. "executed 7 instructions in
// 12µs (583,333/sec)".
func printThroughput(w io.Writer, res runResult) {
	perSec := "n/a"
	if res.elapsed > 0 {
		rate := float64(res.instructions) / res.elapsed.Seconds()
		perSec = humanize.Comma(int64(rate))
	}
	fmt.Fprintf(w, "executed %s instructions in %s (%s/sec)\n",
		humanize.Comma(int64(res.instructions)), res.elapsed, perSec)
}

// runREPL implements the interactive surface the bare `<input_file>`
// contract in §6.1 doesn't cover: each line is lexed, parsed, compiled, and
// run against a persistent VM, à la a line-edited Forth/Lisp top level.
func runREPL(log *logio.Logger, cfg config.Config) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	out := flushio.NewWriteFlusher(os.Stdout)
	defer out.Flush()

	cfg.InputFile = "<repl>"
	var logf func(string, ...interface{})
	if cfg.DebugMode {
		logf = log.Leveledf("TRACE")
	}

	fmt.Fprintln(out, version, "-- interactive mode, Ctrl-D to exit")
	out.Flush()
	for {
		text, err := line.Prompt("osfl> ")
		if err != nil {
			return
		}
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		if _, err := run(cfg, []byte(text), out, logf); err != nil {
			reportError(log, err)
		}
		out.Flush()
	}
}
