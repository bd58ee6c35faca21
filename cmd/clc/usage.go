package main

import "fmt"

const usageText = `clc - a compiler front end for a small C-like language

Usage:
    clc -x <source-path> -g <grammar-path>

Flags:
    -x string   path to the source file to compile
    -g string   path to the declarative grammar file

clc lexes the source, builds a canonical LR(1) parser from the grammar,
drives the parser over the resulting token stream while running a
syntax-directed semantic analysis, and writes four artifacts into the
current directory:

    Lex_token_stream.txt   the token stream, one token per line
    Lr1_table.txt          the ACTION/GOTO tables
    Lr1_process.txt        the shift/reduce trace of the parse
    inter_code.txt         the generated three-address quadruples

It prints a final summary of the syntax and semantic error counts.
`

func printUsage() {
	fmt.Print(usageText)
}
