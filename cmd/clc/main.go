// Command clc is the driver binary for the compiler front end: it wires
// together package grammar, package lr1, package lexer, package parser and
// package semantics, and writes the four output artifacts to disk.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"

	"clc"
	"clc/grammar"
	"clc/lexer"
	"clc/lr1"
	"clc/parser"
	"clc/semantics"
)

func tracer() tracing.Trace {
	return tracing.Select("clc.cmd")
}

func main() {
	initDisplay()

	fs := flag.NewFlagSet("clc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	srcPath := fs.String("x", "", "path to the source file to compile")
	grammarPath := fs.String("g", "", "path to the declarative grammar file")
	tlevel := fs.String("v", "Info", "trace level [Debug|Info|Error]")

	if len(os.Args) == 1 {
		printUsage()
		os.Exit(0)
	}
	if err := fs.Parse(os.Args[1:]); err != nil || *srcPath == "" || *grammarPath == "" {
		printUsage()
		os.Exit(0)
	}

	gtrace.SyntaxTracer = gologadapter.New()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))

	src, err := os.ReadFile(*srcPath)
	if err != nil {
		fatal("reading source file %q: %v", *srcPath, err)
	}

	g, err := grammar.Load(*grammarPath)
	if err != nil {
		fatal("loading grammar %q: %v", *grammarPath, err)
	}

	coll, err := lr1.Build(g)
	if err != nil {
		fatal("building canonical LR(1) collection: %v", err)
	}
	tables, err := lr1.BuildTables(g, coll)
	if err != nil {
		fatal("building ACTION/GOTO tables: %v", err)
	}

	lx, err := lexer.New(string(src))
	if err != nil {
		fatal("constructing lexer: %v", err)
	}
	rawTokens, err := lx.All()
	if err != nil {
		fatal("lexing %q: %v", *srcPath, err)
	}
	tokens := make([]clc.Token, len(rawTokens))
	for i, t := range rawTokens {
		tokens[i] = t
	}

	tokenFile := openOutput("Lex_token_stream.txt")
	defer tokenFile.close()
	writeTokenStream(tokenFile.w, rawTokens)

	tableFile := openOutput("Lr1_table.txt")
	defer tableFile.close()
	tables.Dump(tableFile.w)

	processFile := openOutput("Lr1_process.txt")
	defer processFile.close()

	analyzer := semantics.NewAnalyzer(g)
	p := parser.New(g, tables, analyzer, processFile.w)
	accepted, err := p.Parse(tokens)
	if err != nil {
		// fatal exits through os.Exit, which skips deferred calls, so the
		// outputs written so far (the parse trace included) are flushed here.
		for _, o := range []outputFile{tokenFile, tableFile, processFile} {
			o.close()
		}
		fatal("parsing %q: %v", *srcPath, err)
	}

	interFile := openOutput("inter_code.txt")
	defer interFile.close()
	writeQuadruples(interFile.w, analyzer)

	semanticErrors := len(analyzer.Diagnostics)
	for _, d := range analyzer.Diagnostics {
		pterm.Error.Println(d.String())
	}
	if !accepted {
		pterm.Error.Println("parse did not reach accept")
	}

	pterm.Info.Printf("%d syntax errors, %d semantic errors\n", p.SyntaxErrors, semanticErrors)
	for _, f := range []string{"Lex_token_stream.txt", "Lr1_table.txt", "Lr1_process.txt", "inter_code.txt"} {
		pterm.Info.Println(f)
	}
}

// writeTokenStream renders one line per token: its grammar symbol id, its
// literal lexeme and the source line it was matched on.
func writeTokenStream(w io.Writer, tokens []lexer.Token) {
	for _, t := range tokens {
		fmt.Fprintf(w, "%s\t%s\t%d\n", t.SymbolID(), t.Lexeme(), t.Line())
	}
}

// writeQuadruples writes the pretty-header line original_source's
// PrintQuadruple prints before the quadruple list, then prepends a
// label-0 unconditional jump to main's entry quadruple ahead of the
// generated quadruple list, provided a `main` function was actually seen.
func writeQuadruples(w io.Writer, a *semantics.Analyzer) {
	fmt.Fprintln(w, "label : operate, arg1, arg2, result")
	if lbl := a.MainLabel(); lbl >= 0 {
		fmt.Fprintf(w, "0 : j, -, -, %d\n", lbl)
	}
	for _, q := range a.Quads() {
		fmt.Fprintln(w, q.String())
	}
}

func fatal(format string, args ...interface{}) {
	pterm.Error.Println(fmt.Sprintf(format, args...))
	os.Exit(2)
}

type outputFile struct {
	f *os.File
	w *bufio.Writer
}

func openOutput(name string) outputFile {
	f, err := os.Create(name)
	if err != nil {
		fatal("creating %q: %v", name, err)
	}
	return outputFile{f: f, w: bufio.NewWriter(f)}
}

func (o outputFile) close() {
	if err := o.w.Flush(); err != nil {
		tracer().Errorf("flushing %s: %v", o.f.Name(), err)
	}
	if err := o.f.Close(); err != nil {
		tracer().Errorf("closing %s: %v", o.f.Name(), err)
	}
}

// We use pterm for moderately fancy output, the same prefixes trepl's
// initDisplay configures.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  clc",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
