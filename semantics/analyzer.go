package semantics

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/schuko/tracing"

	"clc"
	"clc/grammar"
)

// tracer traces with key 'clc.semantics'.
func tracer() tracing.Trace {
	return tracing.Select("clc.semantics")
}

// noMainLabel marks that no `main` function has been seen yet.
const noMainLabel = -1

// Analyzer is the syntax-directed translator. It
// implements parser.Analyzer: Shift derives a frame straight from the
// token; Reduce dispatches on a production's left-hand side (and
// sometimes its right-hand side) to update the symbol tables, emit
// quadruples, and drive backpatching.
//
// Grounded on original_source/semantic_analysis.hpp's Semantic class:
// same table/scope/backpatch-stack shapes and the same per-production
// dispatch, but split into one method per case instead of one long
// if-else chain, and erroring never short-circuits the reduction —
// every case still pushes its synthesized frame, so a redefinition or
// arity mismatch can't desynchronize the semantic stack for the rest of
// the parse.
type Analyzer struct {
	g *grammar.Grammar

	Tables     []*SymbolTable
	scopeStack []int

	quads *QuadList
	stack frameStack

	backpatchLevel int
	mainLabel      int

	Diagnostics []Diagnostic
}

// NewAnalyzer creates an Analyzer with the global and temp-variable
// tables pre-created and the global scope pushed, matching Semantic's
// constructor.
func NewAnalyzer(g *grammar.Grammar) *Analyzer {
	a := &Analyzer{
		g:         g,
		quads:     newQuadList(),
		mainLabel: noMainLabel,
	}
	a.Tables = append(a.Tables, NewSymbolTable(GlobalTable, "global table"))
	a.scopeStack = append(a.scopeStack, 0)
	a.Tables = append(a.Tables, NewSymbolTable(TempTable, "temp variable table"))
	return a
}

func (a *Analyzer) currentTable() *SymbolTable {
	return a.Tables[a.scopeStack[len(a.scopeStack)-1]]
}

func (a *Analyzer) globalTable() *SymbolTable { return a.Tables[0] }

// Quads exposes the finished quadruple list, for cmd/clc to print.
func (a *Analyzer) Quads() []Quadruple { return a.quads.Quads() }

// BackpatchResolved reports whether every pushed backpatch target has
// been filled; it should hold once a parse reaches accept.
func (a *Analyzer) BackpatchResolved() bool { return a.quads.BackpatchEmpty() }

// MainLabel returns the function-entry label recorded for `main`, or
// noMainLabel if none was seen.
func (a *Analyzer) MainLabel() int { return a.mainLabel }

func (a *Analyzer) errorf(kind DiagnosticKind, line int, format string, args ...interface{}) {
	d := Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
	a.Diagnostics = append(a.Diagnostics, d)
	tracer().Errorf(d.String())
}

// Shift implements parser.Analyzer: push a frame derived straight from
// the token.
func (a *Analyzer) Shift(tok clc.Token) {
	a.stack.push(Frame{
		Token:        tok.SymbolID(),
		Value:        tok.Lexeme(),
		Line:         tok.Line(),
		TableIndex:   -1,
		InTableIndex: -1,
	})
}

// Reduce implements parser.Analyzer: dispatch on the production
//.
func (a *Analyzer) Reduce(prod *grammar.Production) error {
	lhs := a.g.Symbols[prod.LHS].ID
	rhs := a.rhsIDs(prod)
	epsilon := prod.IsEpsilon(a.g)

	switch {
	case lhs == "Program":
		a.reduceProgram(prod, epsilon)
	case lhs == "ExtDef" && len(rhs) >= 2 && rhs[1] == "<ID>":
		a.reduceExtDef(prod)
	case lhs == "Specifier":
		a.reduceSpecifier(prod)
	case lhs == "CreateFunTable_m":
		a.reduceCreateFunTable()
	case lhs == "ExitFunTable_m":
		a.reduceExitFunTable()
	case lhs == "ParamDec":
		a.reduceParamDec(prod)
	case lhs == "Block":
		a.reduceBlock(prod)
	case lhs == "Stmt" && len(rhs) >= 1 && rhs[0] == "return":
		a.reduceReturn(prod)
	case lhs == "IfStmt_m1":
		a.reduceIfStmtM1()
	case lhs == "IfStmt_m2":
		a.reduceIfStmtM2()
	case lhs == "IfNext" && len(rhs) >= 1 && rhs[0] == "IfStmt_next":
		a.reduceIfNextWithElse(prod)
	case lhs == "IfStmt_next":
		a.reduceIfStmtNext()
	case lhs == "IfStmt":
		a.reduceIfStmt(prod)
	case lhs == "WhileStmt_m1":
		a.reduceWhileStmtM1()
	case lhs == "WhileStmt_m2":
		a.reduceWhileStmtM2()
	case lhs == "WhileStmt":
		a.reduceWhileStmt(prod)
	case lhs == "Dec" && len(rhs) == 1:
		a.reduceDecPlain(prod)
	case lhs == "Dec" && len(rhs) == 3:
		a.reduceDecInit(prod)
	case lhs == "Aritop" || lhs == "Assignop" || lhs == "Relop":
		a.reduceOperator(lhs, prod)
	case lhs == "CallFunCheck":
		a.reduceCallFunCheck()
	case lhs == "Args" && epsilon:
		a.reduceArgsEmpty()
	case lhs == "Args" && len(rhs) == 1 && rhs[0] == "Exp":
		a.reduceArgsSingle(prod)
	case lhs == "Args":
		a.reduceArgsMulti(prod)
	case lhs == "Exp":
		a.reduceExp(prod, rhs)
	default:
		a.reduceDefault(prod, epsilon)
	}
	return nil
}

func (a *Analyzer) rhsIDs(prod *grammar.Production) []string {
	ids := make([]string, len(prod.RHS))
	for i, sym := range prod.RHS {
		ids[i] = a.g.Symbols[sym].ID
	}
	return ids
}

func (a *Analyzer) popFrames(prod *grammar.Production, epsilon bool) {
	if epsilon {
		return
	}
	a.stack.popN(len(prod.RHS))
}

// redeclaredInAnyScope walks the scope stack top-to-bottom.
func (a *Analyzer) redeclaredInAnyScope(name string) bool {
	for i := len(a.scopeStack) - 1; i >= 0; i-- {
		if _, ok := a.Tables[a.scopeStack[i]].Find(name); ok {
			return true
		}
	}
	return false
}

func (a *Analyzer) declareVariable(name, specifier string, line int) {
	current := a.currentTable()
	if _, exists := current.Find(name); exists {
		a.errorf(Redefinition, line, "variable %s redefined", name)
		return
	}
	current.Add(Identifier{Category: CategoryVariable, Specifier: specifier, Name: name})
}

// --- Declarations -----------------------------------------------------

func (a *Analyzer) reduceProgram(prod *grammar.Production, epsilon bool) {
	if a.mainLabel == noMainLabel {
		a.errorf(MissingMain, 0, "main undefined")
	}
	a.popFrames(prod, epsilon)
	a.stack.push(newFrame("Program"))
}

func (a *Analyzer) reduceExtDef(prod *grammar.Production) {
	identifier := a.stack.at(1) // <ID>
	specifier := a.stack.at(2)

	if a.redeclaredInAnyScope(identifier.Value) {
		a.errorf(Redefinition, identifier.Line, "variable %s redefined", identifier.Value)
	} else {
		a.currentTable().Add(Identifier{Category: CategoryVariable, Specifier: specifier.Value, Name: identifier.Value})
	}

	a.stack.popN(len(prod.RHS))
	f := newFrame("ExtDef")
	f.Value, f.Line = identifier.Value, identifier.Line
	a.stack.push(f)
}

func (a *Analyzer) reduceSpecifier(prod *grammar.Production) {
	specifier := a.stack.top()
	a.stack.popN(len(prod.RHS))
	f := newFrame("Specifier")
	f.Value, f.Line = specifier.Value, specifier.Line
	a.stack.push(f)
}

// --- Functions ---------------------------------------------------------

func (a *Analyzer) reduceCreateFunTable() {
	identifier := a.stack.at(0) // the function name, just shifted
	specifier := a.stack.at(1)

	if _, exists := a.globalTable().Find(identifier.Value); exists {
		a.errorf(Redefinition, identifier.Line, "function %s redefined", identifier.Value)
	}

	fnTable := NewSymbolTable(FunctionTable, identifier.Value)
	a.Tables = append(a.Tables, fnTable)
	fnTableIdx := len(a.Tables) - 1

	a.globalTable().Add(Identifier{
		Category:      CategoryFunction,
		Specifier:     specifier.Value,
		Name:          identifier.Value,
		FunctionEntry: a.quads.Peek(),
		FunctionTable: fnTableIdx,
	})
	a.scopeStack = append(a.scopeStack, fnTableIdx)

	if identifier.Value == "main" {
		a.mainLabel = a.quads.Peek()
	}
	a.quads.Emit(identifier.Value, "", "", "")

	fnTable.Add(Identifier{
		Category:  CategoryReturnVar,
		Specifier: specifier.Value,
		Name:      fnTable.Name + "_ret_val",
	})

	f := newFrame("CreateFunTable_m")
	f.Value, f.Line = identifier.Value, identifier.Line
	a.stack.push(f)
}

func (a *Analyzer) reduceExitFunTable() {
	a.scopeStack = a.scopeStack[:len(a.scopeStack)-1]
	a.stack.push(newFrame("ExitFunTable_m"))
}

func (a *Analyzer) reduceParamDec(prod *grammar.Production) {
	identifier := a.stack.at(0)
	specifier := a.stack.at(1)
	fnTable := a.currentTable()

	if _, exists := fnTable.Find(identifier.Value); exists {
		a.errorf(Redefinition, identifier.Line, "parameter %s redefined", identifier.Value)
		a.stack.popN(len(prod.RHS))
		f := newFrame("ParamDec")
		f.Value, f.Line = identifier.Value, identifier.Line
		a.stack.push(f)
		return
	}

	idx, _ := fnTable.Add(Identifier{Category: CategoryVariable, Specifier: specifier.Value, Name: identifier.Value})
	if globalIdx, ok := a.globalTable().Find(fnTable.Name); ok {
		a.globalTable().At(globalIdx).ParameterNum++
	}

	a.stack.popN(len(prod.RHS))
	f := newFrame("ParamDec")
	f.Value, f.Line = identifier.Value, identifier.Line
	f.TableIndex, f.InTableIndex = a.scopeStack[len(a.scopeStack)-1], idx
	a.stack.push(f)
}

// --- Blocks and statements ----------------------------------------------

func (a *Analyzer) reduceBlock(prod *grammar.Production) {
	a.stack.popN(len(prod.RHS))
	f := newFrame("Block")
	f.Value = strconv.Itoa(a.quads.Peek())
	a.stack.push(f)
}

func (a *Analyzer) reduceReturn(prod *grammar.Production) {
	retExp := a.stack.at(1) // Exp
	fnTable := a.currentTable()

	value := ""
	if retExp.Value != "" {
		a.quads.Emit(":=", retExp.Value, "", fnTable.Entries[0].Name)
		value = retExp.Value
	}
	a.quads.Emit("return", "", "", fnTable.Name)

	a.stack.popN(len(prod.RHS))
	f := newFrame("Stmt")
	f.Value = value
	a.stack.push(f)
}

// --- if / while backpatching --------------------------------------------

func (a *Analyzer) reduceIfStmtM1() {
	a.backpatchLevel++
	f := newFrame("IfStmt_m1")
	f.Value = strconv.Itoa(a.quads.Peek())
	a.stack.push(f)
}

func (a *Analyzer) reduceIfStmtM2() {
	ifExp := a.stack.at(1) // Exp
	falseJump := a.quads.EmitPending("j=", ifExp.Value, "0")
	a.quads.PushBackpatch(falseJump)
	trueJump := a.quads.EmitPending("j", "", "")
	a.quads.PushBackpatch(trueJump)

	f := newFrame("IfStmt_m2")
	f.Value = strconv.Itoa(a.quads.Peek())
	a.stack.push(f)
}

func (a *Analyzer) reduceIfNextWithElse(prod *grammar.Production) {
	ifStmtNext := a.stack.at(2)
	a.stack.popN(len(prod.RHS))
	f := newFrame("IfNext")
	f.Value = ifStmtNext.Value
	a.stack.push(f)
}

func (a *Analyzer) reduceIfStmtNext() {
	idx := a.quads.EmitPending("j", "", "")
	a.quads.PushBackpatch(idx)
	f := newFrame("IfStmt_next")
	f.Value = strconv.Itoa(a.quads.Peek())
	a.stack.push(f)
}

func (a *Analyzer) reduceIfStmt(prod *grammar.Production) {
	ifM2 := a.stack.at(2)
	ifNext := a.stack.at(0)

	if ifNext.Value == "" {
		// if, no else: true-jump lands on the body, false-jump on the join point.
		trueJump := a.quads.PopBackpatch()
		a.quads.Backfill(trueJump, ifM2.Value)
		falseJump := a.quads.PopBackpatch()
		a.quads.Backfill(falseJump, strconv.Itoa(a.quads.Peek()))
	} else {
		// if-else: jump-past-else lands on the join point, true-jump on the
		// if-body, false-jump on the else-body.
		jumpPastElse := a.quads.PopBackpatch()
		a.quads.Backfill(jumpPastElse, strconv.Itoa(a.quads.Peek()))
		trueJump := a.quads.PopBackpatch()
		a.quads.Backfill(trueJump, ifM2.Value)
		falseJump := a.quads.PopBackpatch()
		a.quads.Backfill(falseJump, ifNext.Value)
	}
	a.backpatchLevel--

	a.stack.popN(len(prod.RHS))
	a.stack.push(newFrame("IfStmt"))
}

func (a *Analyzer) reduceWhileStmtM1() {
	a.backpatchLevel++
	f := newFrame("WhileStmt_m1")
	f.Value = strconv.Itoa(a.quads.Peek())
	a.stack.push(f)
}

func (a *Analyzer) reduceWhileStmtM2() {
	whileExp := a.stack.at(1)
	falseJump := a.quads.EmitPending("j=", whileExp.Value, "0")
	a.quads.PushBackpatch(falseJump)
	trueJump := a.quads.EmitPending("j", "", "")
	a.quads.PushBackpatch(trueJump)

	f := newFrame("WhileStmt_m2")
	f.Value = strconv.Itoa(a.quads.Peek())
	a.stack.push(f)
}

func (a *Analyzer) reduceWhileStmt(prod *grammar.Production) {
	whileM1 := a.stack.at(5)
	whileM2 := a.stack.at(1)

	a.quads.Emit("j", "", "", whileM1.Value) // unconditional jump back to the condition

	trueJump := a.quads.PopBackpatch()
	a.quads.Backfill(trueJump, whileM2.Value)
	falseJump := a.quads.PopBackpatch()
	a.quads.Backfill(falseJump, strconv.Itoa(a.quads.Peek()))
	a.backpatchLevel--

	a.stack.popN(len(prod.RHS))
	a.stack.push(newFrame("WhileStmt"))
}

// --- Local declarations --------------------------------------------------

func (a *Analyzer) reduceDecPlain(prod *grammar.Production) {
	identifier := a.stack.top()
	specifier := a.stack.at(1) // the enclosing Def's Specifier frame, still unpopped

	a.declareVariable(identifier.Value, specifier.Value, identifier.Line)

	a.stack.popN(len(prod.RHS))
	f := newFrame("Dec")
	f.Value, f.Line = identifier.Value, identifier.Line
	a.stack.push(f)
}

// reduceDecInit implements `Dec -> <ID> = Exp` with the initializer
// assignment original_source's dispatch never reaches (its guard for this
// arm duplicates the plain-Dec case's, so the three-symbol production is
// unreachable there): declare the variable, then emit the assignment.
func (a *Analyzer) reduceDecInit(prod *grammar.Production) {
	identifier := a.stack.at(2)
	specifier := a.stack.at(3) // the enclosing Def's Specifier frame
	initExp := a.stack.top()

	a.declareVariable(identifier.Value, specifier.Value, identifier.Line)
	a.quads.Emit(":=", initExp.Value, "", identifier.Value)

	a.stack.popN(len(prod.RHS))
	f := newFrame("Dec")
	f.Value, f.Line = identifier.Value, identifier.Line
	a.stack.push(f)
}

// --- Operators -------------------------------------------------------

func (a *Analyzer) reduceOperator(lhs string, prod *grammar.Production) {
	op := a.stack.top()
	a.stack.popN(len(prod.RHS))
	f := newFrame(lhs)
	f.Value, f.Line = op.Value, op.Line
	a.stack.push(f)
}

// --- Function calls ----------------------------------------------------

func (a *Analyzer) reduceCallFunCheck() {
	funID := a.stack.at(1) // the called function's <ID>, with "(" on top

	idx, ok := a.globalTable().Find(funID.Value)
	if !ok || a.globalTable().Entries[idx].Category != CategoryFunction {
		a.errorf(UndefinedFunction, funID.Line, "calling undefined function %s", funID.Value)
		idx = -1
	}

	f := newFrame("CallFunCheck")
	f.TableIndex, f.InTableIndex = 0, idx
	a.stack.push(f)
}

func (a *Analyzer) reduceArgsEmpty() {
	f := newFrame("Args")
	f.Value = "0"
	a.stack.push(f)
}

func (a *Analyzer) reduceArgsSingle(prod *grammar.Production) {
	exp := a.stack.top()
	a.quads.Emit("param", exp.Value, "", "")
	a.stack.popN(len(prod.RHS))
	f := newFrame("Args")
	f.Value = "1"
	a.stack.push(f)
}

func (a *Analyzer) reduceArgsMulti(prod *grammar.Production) {
	exp := a.stack.at(2)
	innerArgs := a.stack.top()
	count, _ := strconv.Atoi(innerArgs.Value)

	a.quads.Emit("param", exp.Value, "", "")

	a.stack.popN(len(prod.RHS))
	f := newFrame("Args")
	f.Value = strconv.Itoa(count + 1)
	a.stack.push(f)
}

// --- Expressions -------------------------------------------------------

func (a *Analyzer) reduceExp(prod *grammar.Production, rhs []string) {
	switch {
	case rhs[0] == "<ID>" && len(rhs) == 5 && rhs[1] == "(":
		a.reduceExpCall(prod)
	case rhs[0] == "<ID>" && len(rhs) == 3 && rhs[1] == "Assignop":
		a.reduceExpAssign(prod)
	case rhs[0] == "<ID>" && len(rhs) == 1:
		a.reduceExpIdent(prod)
	case len(rhs) == 1 && (rhs[0] == "<INT>" || rhs[0] == "<FLOAT>"):
		a.reduceExpLiteral(prod)
	case rhs[0] == "(" && len(rhs) == 3:
		a.reduceExpParen(prod)
	case len(rhs) == 3 && rhs[1] == "Relop":
		a.reduceExpRelop(prod)
	case len(rhs) == 3 && rhs[1] == "Aritop":
		a.reduceExpAritop(prod)
	default:
		a.reduceDefault(prod, prod.IsEpsilon(a.g))
	}
}

func (a *Analyzer) reduceExpCall(prod *grammar.Production) {
	identifier := a.stack.at(4)
	check := a.stack.at(2)
	args := a.stack.at(1)

	argCount, _ := strconv.Atoi(args.Value)
	if check.InTableIndex >= 0 {
		paramNum := a.globalTable().Entries[check.InTableIndex].ParameterNum
		if paramNum > argCount {
			a.errorf(ArityMismatch, identifier.Line, "calling function %s, too few arguments", identifier.Value)
		} else if paramNum < argCount {
			a.errorf(ArityMismatch, identifier.Line, "calling function %s, too many arguments", identifier.Value)
		}
	}

	tmp := a.quads.NewTemp()
	a.quads.Emit("call", identifier.Value, "", tmp)

	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = tmp
	a.stack.push(f)
}

func (a *Analyzer) reduceExpAssign(prod *grammar.Production) {
	id := a.stack.at(2)
	op := a.stack.at(1)
	subExp := a.stack.top()

	if op.Value == "=" {
		a.quads.Emit(":=", subExp.Value, "", id.Value)
	} else {
		a.quads.Emit(op.Value, id.Value, subExp.Value, id.Value)
	}

	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = id.Value
	a.stack.push(f)
}

func (a *Analyzer) reduceExpIdent(prod *grammar.Production) {
	// Use-before-declaration of <ID> is deliberately not checked here —
	// see DESIGN.md's open-question decision.
	id := a.stack.top()
	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = id.Value
	a.stack.push(f)
}

func (a *Analyzer) reduceExpLiteral(prod *grammar.Production) {
	lit := a.stack.top()
	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = lit.Value
	a.stack.push(f)
}

func (a *Analyzer) reduceExpParen(prod *grammar.Production) {
	sub := a.stack.at(1)
	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = sub.Value
	a.stack.push(f)
}

func (a *Analyzer) reduceExpRelop(prod *grammar.Production) {
	left := a.stack.at(2)
	op := a.stack.at(1)
	right := a.stack.top()

	tmp := a.quads.NewTemp()
	base := a.quads.Peek()
	a.quads.Emit("j"+op.Value, left.Value, right.Value, strconv.Itoa(base+3))
	a.quads.Emit(":=", "0", "", tmp)
	a.quads.Emit("j", "", "", strconv.Itoa(base+4))
	a.quads.Emit(":=", "1", "", tmp)

	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = tmp
	a.stack.push(f)
}

func (a *Analyzer) reduceExpAritop(prod *grammar.Production) {
	left := a.stack.at(2)
	op := a.stack.at(1)
	right := a.stack.top()

	tmp := a.quads.NewTemp()
	a.quads.Emit(op.Value, left.Value, right.Value, tmp)

	a.stack.popN(len(prod.RHS))
	f := newFrame("Exp")
	f.Value = tmp
	a.stack.push(f)
}

// reduceDefault handles every production carrying no synthesized value
// of its own (ExtDefList, FunDec, VarList, Block_m, StmtList's combining
// form, IfNext's no-else form, DefList, Def, ...): pop |RHS| frames
// (none, for an epsilon production) and push an empty frame for LHS.
func (a *Analyzer) reduceDefault(prod *grammar.Production, epsilon bool) {
	a.popFrames(prod, epsilon)
	a.stack.push(newFrame(a.g.Symbols[prod.LHS].ID))
}
