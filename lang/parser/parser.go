// Package parser builds an ast.Module from the token stream produced by
// lang/scanner. Like the scanner, it is an out-of-scope "black box"
// collaborator for the core pipeline (spec.md §1) — it exists only so the
// CLI has something to feed the checker.
package parser

import (
	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/scanner"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/token"
)

// ParseFile scans and parses a single source file into its top-level
// function declarations and the set of names marked `export`.
func ParseFile(file, src string, errs *diag.List) (decls []*ast.FunctionDeclaration, exported map[string]bool) {
	toks := scanner.ScanAll(file, src, errs)
	p := &parser{file: file, toks: toks, errs: errs}
	return p.parseFile()
}

type parser struct {
	file string
	toks []scanner.TokenAndValue
	pos  int
	errs *diag.List
}

func (p *parser) cur() scanner.TokenAndValue  { return p.toks[p.pos] }
func (p *parser) at(t token.Token) bool       { return p.cur().Token == t }
func (p *parser) loc() token.Location         { return p.cur().Pos.InFile(p.file) }

func (p *parser) advance() scanner.TokenAndValue {
	tv := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tv
}

func (p *parser) expect(t token.Token) scanner.TokenAndValue {
	if !p.at(t) {
		diag.Add(p.errs, p.loc(), "expected %s, found %s", t, p.cur().Token)
		return p.cur()
	}
	return p.advance()
}

// skipSemis consumes any number of optional `;` statement separators.
func (p *parser) skipSemis() {
	for p.at(token.SEMI) {
		p.advance()
	}
}

func (p *parser) parseFile() ([]*ast.FunctionDeclaration, map[string]bool) {
	var decls []*ast.FunctionDeclaration
	exported := map[string]bool{}

	p.skipSemis()
	for !p.at(token.EOF) {
		isExported := false
		if p.at(token.EXPORT) {
			p.advance()
			isExported = true
		}
		fn := p.parseFunctionDecl(false)
		decls = append(decls, fn)
		if isExported {
			exported[fn.ID] = true
		}
		p.skipSemis()
	}
	return decls, exported
}

// parseFunctionDecl parses `fun name(params...): Result = body`. When local
// is true, the declaration is a statement nested in a block, and its
// FunctionContext.IsLocal is set accordingly.
func (p *parser) parseFunctionDecl(local bool) *ast.FunctionDeclaration {
	start := p.loc()
	p.expect(token.FUN)
	name := p.expect(token.IDENT).Lit

	p.expect(token.LPAREN)
	var params []ast.Parameter
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		pname := p.expect(token.IDENT).Lit
		p.expect(token.COLON)
		pshape := p.parseShape()
		params = append(params, ast.Parameter{ID: pname, Shape: pshape})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	p.expect(token.COLON)
	result := p.parseShape()
	p.expect(token.EQ)
	body := p.parseExpr()

	decl := ast.NewFunctionDeclaration(start, name, params, result, body, false, local)
	return decl
}

// parseShape parses a type annotation: Float, String, Boolean, Unit,
// List[T], or a function type `{ A, B -> R }`.
func (p *parser) parseShape() shape.Shape {
	switch {
	case p.at(token.LBRACE):
		p.advance()
		var args []shape.Shape
		for !p.at(token.ARROW) && !p.at(token.EOF) {
			args = append(args, p.parseShape())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.ARROW)
		result := p.parseShape()
		p.expect(token.RBRACE)
		return shape.Function(result, args...)

	case p.at(token.IDENT):
		name := p.advance().Lit
		if name == "List" && p.at(token.LBRACK) {
			p.advance()
			elem := p.parseShape()
			p.expect(token.RBRACK)
			return shape.Generic(shape.Named("List"), elem)
		}
		return shape.Named(name)

	default:
		diag.Add(p.errs, p.loc(), "expected a type, found %s", p.cur().Token)
		p.advance()
		return shape.Unknown()
	}
}

// parseExpr parses a full expression, including blocks and lambdas; it is
// the entry point for a function body, an if-branch, or a call argument.
func (p *parser) parseExpr() ast.Node {
	return p.parseBinary(0)
}

// precedence table: comparison operators bind loosest, then + -, then * /.
var precedence = map[token.Token]int{
	token.EQEQ: 1, token.NEQ: 1, token.LT: 1, token.GT: 1, token.LE: 1, token.GE: 1,
	token.PLUS: 2, token.MINUS: 2,
	token.STAR: 3, token.SLASH: 3,
}

var opNames = map[token.Token]string{
	token.EQEQ: "==", token.NEQ: "!=", token.LT: "<", token.GT: ">", token.LE: "<=", token.GE: ">=",
	token.PLUS: "+", token.MINUS: "-", token.STAR: "*", token.SLASH: "/",
}

func (p *parser) parseBinary(minPrec int) ast.Node {
	left := p.parseUnary()
	for {
		prec, ok := precedence[p.cur().Token]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance().Token
		right := p.parseBinary(prec + 1)
		left = ast.NewBinaryOp(left.Location(), opNames[opTok], left, right)
	}
}

func (p *parser) parseUnary() ast.Node {
	if p.at(token.MINUS) {
		start := p.loc()
		p.advance()
		return ast.NewUnaryOp(start, "-", p.parseUnary())
	}
	return p.parseCallOrPrimary()
}

func (p *parser) parseCallOrPrimary() ast.Node {
	expr := p.parsePrimary()
	for p.at(token.LPAREN) {
		start := expr.Location()
		p.advance()
		var args []ast.Node
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			args = append(args, p.parseExpr())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		expr = ast.NewCall(start, expr, args)
	}
	return expr
}

func (p *parser) parsePrimary() ast.Node {
	start := p.loc()
	switch {
	case p.at(token.NUMBER):
		v := p.advance().Num
		return ast.NewNumberLiteral(start, v)

	case p.at(token.STRING):
		v := p.advance().Lit
		return ast.NewStringLiteral(start, v)

	case p.at(token.TRUE):
		p.advance()
		return ast.NewBooleanLiteral(start, true)

	case p.at(token.FALSE):
		p.advance()
		return ast.NewBooleanLiteral(start, false)

	case p.at(token.IDENT):
		name := p.advance().Lit
		return ast.NewVariable(start, name)

	case p.at(token.LPAREN):
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return inner

	case p.at(token.IF):
		return p.parseIf()

	case p.at(token.LBRACE):
		return p.parseBraced()

	case p.at(token.LET):
		return p.parseLet()

	case p.at(token.FUN):
		fn := p.parseFunctionDecl(true)
		fn.Context.IsLocal = true
		return fn

	default:
		diag.Add(p.errs, start, "unexpected token: %s", p.cur().Token)
		p.advance()
		return ast.NewNoOp(start)
	}
}

func (p *parser) parseIf() ast.Node {
	start := p.loc()
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseBraced()
	var els ast.Node = ast.NewBlock(p.loc(), nil)
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			els = p.parseIf()
		} else {
			els = p.parseBraced()
		}
	}
	return ast.NewIf(start, cond, then, els)
}

func (p *parser) parseLet() ast.Node {
	start := p.loc()
	p.expect(token.LET)
	name := p.expect(token.IDENT).Lit
	p.expect(token.EQ)
	body := p.parseExpr()
	return ast.NewAssignment(start, name, body)
}

// parseBraced disambiguates `{ ... }` between a lambda (`{ x, y => expr }`)
// and a block of statements (`{ stmt; stmt }`), by speculatively scanning
// ahead for a parameter list followed by `=>`.
func (p *parser) parseBraced() ast.Node {
	start := p.loc()
	p.expect(token.LBRACE)

	if names, ok := p.tryLambdaParams(); ok {
		p.expect(token.FATARROW)
		body := p.parseExpr()
		p.expect(token.RBRACE)
		params := make([]ast.Parameter, len(names))
		for i, n := range names {
			params[i] = ast.Parameter{ID: n, Shape: shape.Unknown()}
		}
		return ast.NewFunctionDeclaration(start, "", params, shape.Unknown(), body, true, true)
	}

	var stmts []ast.Node
	p.skipSemis()
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseExpr())
		p.skipSemis()
	}
	p.expect(token.RBRACE)
	return ast.NewBlock(start, stmts)
}

// tryLambdaParams looks ahead (without consuming on failure) for a
// comma-separated identifier list immediately followed by `=>`.
func (p *parser) tryLambdaParams() ([]string, bool) {
	save := p.pos
	if p.at(token.FATARROW) {
		return nil, true // niladic lambda: `{ => expr }`
	}
	var names []string
	for p.at(token.IDENT) {
		names = append(names, p.cur().Lit)
		p.advance()
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if len(names) > 0 && p.at(token.FATARROW) {
		return names, true
	}
	p.pos = save
	return nil, false
}
