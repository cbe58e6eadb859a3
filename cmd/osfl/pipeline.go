package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/compiler"
	"github.com/akshatnamdeo/osfl/internal/config"
	"github.com/akshatnamdeo/osfl/internal/flushio"
	"github.com/akshatnamdeo/osfl/internal/lexer"
	"github.com/akshatnamdeo/osfl/internal/loader"
	"github.com/akshatnamdeo/osfl/internal/natives"
	"github.com/akshatnamdeo/osfl/internal/parser"
	"github.com/akshatnamdeo/osfl/internal/token"
	"github.com/akshatnamdeo/osfl/internal/vm"
)

// stageError is the CLI surface's one diagnostic shape (spec.md §6.1):
// "Error in <file> at line <L>, column <C>: followed by a message."
type stageError struct {
	file string
	loc  token.SourceLocation
	msg  string
}

func (e stageError) Error() string {
	return fmt.Sprintf("Error in %s at line %d, column %d:\n%s", e.file, e.loc.Line, e.loc.Column, e.msg)
}

// tracefunc is the debug-mode instruction tracer's sink, leveled through
// logio.Logger.Leveledf by the caller.
type tracefunc func(mess string, args ...interface{})

// runResult carries the throughput figures cmd/osfl's debug-mode summary
// prints at halt (humanize-formatted instruction count and rate).
type runResult struct {
	instructions int
	elapsed      time.Duration
}

// lex drains src into a flat token array, the shape parser.New expects.
// Lexer errors abort before parsing ever starts (spec §7: "each stage
// reports its own errors and halts the pipeline if any occurred").
func lex(cfg config.Config, src []byte) ([]token.Token, error) {
	lx := lexer.New(src, cfg.LexerConfig(cfg.InputFile))
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.Error {
			le := lx.LastError()
			return nil, stageError{file: cfg.InputFile, loc: le.Location, msg: fmt.Sprintf("%s: %s", le.Kind, le.Message)}
		}
	}
	return toks, nil
}

// compileSource runs the full lex -> parse -> import-splice -> compile
// pipeline over src, returning the resulting Bytecode.
func compileSource(cfg config.Config, src []byte) (*bytecode.Bytecode, error) {
	toks, err := lex(cfg, src)
	if err != nil {
		return nil, err
	}

	p := parser.New(toks)
	root := p.Parse()
	if diags := p.Diagnostics(); len(diags) > 0 {
		d := diags[0]
		return nil, stageError{file: cfg.InputFile, loc: d.Location, msg: d.Message}
	}

	ld := loader.New(filepath.Dir(cfg.InputFile), cfg.LexerConfig)
	ld.Resolve(root)
	if diags := ld.Diagnostics(); len(diags) > 0 {
		d := diags[0]
		return nil, stageError{file: cfg.InputFile, loc: d.Location, msg: d.Message}
	}

	c := compiler.New()
	bc, err := c.Compile(root)
	if err != nil {
		cd := err.(compiler.Diagnostic)
		return nil, stageError{file: cfg.InputFile, loc: cd.Location, msg: cd.Message}
	}
	for _, d := range c.Diagnostics() {
		if d.Fatal {
			continue
		}
		// Non-fatal compiler diagnostics (unresolved identifiers) do not
		// abort the pipeline and are not printed.
		_ = d
	}
	return bc, nil
}

// execute loads bc into a fresh VM, registers the host native library, and
// runs it to completion. logf (nil outside --debug) drives per-instruction
// tracing; out is where the `print` native writes.
func execute(cfg config.Config, bc *bytecode.Bytecode, out flushio.WriteFlusher, logf tracefunc) (runResult, error) {
	v := vm.New(bc)
	natives.Register(v, out, nil)
	if logf != nil {
		v.SetLogf(logf)
	}

	start := time.Now()
	err := v.Run()
	res := runResult{instructions: len(bc.Instructions), elapsed: time.Since(start)}
	out.Flush()
	if err != nil {
		ve := err.(*vm.Error)
		return res, stageError{file: cfg.InputFile, loc: token.SourceLocation{File: cfg.InputFile, Line: 0, Column: 0}, msg: fmt.Sprintf("%s (pc=%d): %s", ve.Kind, ve.PC, ve.Message)}
	}
	return res, nil
}

// run is cmd/osfl's single entry point for a whole file: compile then
// execute, handing back whichever stage's error fired first.
func run(cfg config.Config, src []byte, out flushio.WriteFlusher, logf tracefunc) (runResult, error) {
	bc, err := compileSource(cfg, src)
	if err != nil {
		return runResult{}, err
	}
	return execute(cfg, bc, out, logf)
}
