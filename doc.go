/*
Package clc is a compiler front end for a small C-like language: it lexes
a source file, builds a canonical LR(1) parser from a declarative grammar
file, drives the parser over the token stream while dispatching semantic
actions, and emits three-address quadruples as intermediate code.

Package structure:

■ grammar: loads a grammar file into a symbol registry and production
list, and computes FIRST sets.

■ lr1: builds the canonical LR(1) item-set collection and fills the
ACTION/GOTO tables.

■ lexer: tokenizes source text.

■ parser: the shift-reduce driver, including panic-mode error recovery.

■ semantics: the syntax-directed translator — symbol tables, quadruple
emission, and backpatching.

■ cmd/clc: the command-line driver.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package clc
