package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/intern"
)

// parseSexprNamed parses one s-expression body into an ast.Expr via b,
// then stamps the resulting node with pos so it gets a stable,
// position-derived name once compiled (spec.md §4.5).
//
// Surface notation: bare words are numbers or the symbols true/false;
// "@name" is a context reference; anything else bare is a property or
// configuration reference (ast.Data). Everything else is a parenthesized
// list headed by an operator symbol: arithmetic/comparison/logical tokens
// match ast.BinOpKind.String() exactly ("+", "==", "&&", ...), "-" with one
// operand is Neg, "!" is Not, "?" is the ternary choice, "member"/"index"/
// "at"/"paren" mirror the AST nodes of the same name, "int" is integration,
// and the sixteen temporal operator names (G, F, Xs, Xw, Us, ...) take an
// optional trailing time bound of two arguments, either of which may be
// "_" for one-sided bounds.
func parseSexprNamed(b *ast.Builder, src string, pos ast.Span) (ast.Expr, error) {
	toks, err := tokenizeSexpr(src)
	if err != nil {
		return nil, err
	}
	p := &sparser{toks: toks, b: b}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected trailing input at %q", p.toks[p.pos])
	}
	e.SetSpan(pos)
	return e, nil
}

type sparser struct {
	toks []string
	pos  int
	b    *ast.Builder
}

func tokenizeSexpr(src string) ([]string, error) {
	var toks []string
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '"':
			var sb strings.Builder
			j := i + 1
			closed := false
			for j < n {
				if src[j] == '\\' && j+1 < n {
					sb.WriteByte(src[j+1])
					j += 2
					continue
				}
				if src[j] == '"' {
					closed = true
					break
				}
				sb.WriteByte(src[j])
				j++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated string literal")
			}
			toks = append(toks, "\""+sb.String())
			i = j + 1
		default:
			j := i
			for j < n && !isSexprBreak(src[j]) {
				j++
			}
			toks = append(toks, src[i:j])
			i = j
		}
	}
	return toks, nil
}

func isSexprBreak(c byte) bool {
	switch c {
	case '(', ')', ' ', '\t', '\n', '\r', '"':
		return true
	default:
		return false
	}
}

func (p *sparser) next() (string, error) {
	if p.pos >= len(p.toks) {
		return "", fmt.Errorf("unexpected end of input")
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

func (p *sparser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *sparser) parseExpr() (ast.Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok == "(" {
		return p.parseList()
	}
	if tok == ")" {
		return nil, fmt.Errorf("unexpected ')'")
	}
	return p.parseAtom(tok)
}

func (p *sparser) parseAtom(tok string) (ast.Expr, error) {
	switch {
	case strings.HasPrefix(tok, "\""):
		s := tok[1:]
		return p.b.String(ast.Span{}, intern.Intern(s)), nil
	case tok == "true":
		return p.b.Bool(ast.Span{}, true), nil
	case tok == "false":
		return p.b.Bool(ast.Span{}, false), nil
	case strings.HasPrefix(tok, "@") && len(tok) > 1:
		return p.b.Context(ast.Span{}, tok[1:]), nil
	}
	if iv, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return p.b.Int(ast.Span{}, iv), nil
	}
	if fv, err := strconv.ParseFloat(tok, 64); err == nil {
		return p.b.Float(ast.Span{}, fv), nil
	}
	if tok == "" {
		return nil, fmt.Errorf("empty atom")
	}
	return p.b.Data(ast.Span{}, tok), nil
}

var binOpByToken = map[string]ast.BinOpKind{
	"+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod,
	"==": ast.OpEq, "!=": ast.OpNe, "<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
	"<=>": ast.OpEqu, "&&": ast.OpAnd, "||": ast.OpOr, "^": ast.OpXor, "=>": ast.OpImp,
}

var tUnaryByToken = map[string]ast.TemporalOp{
	"G": ast.OpG, "F": ast.OpF, "Xs": ast.OpXs, "Xw": ast.OpXw,
	"H": ast.OpH, "O": ast.OpO, "Ys": ast.OpYs, "Yw": ast.OpYw,
}

var tBinaryByToken = map[string]ast.TemporalOp{
	"Us": ast.OpUs, "Uw": ast.OpUw, "Rs": ast.OpRs, "Rw": ast.OpRw,
	"Ss": ast.OpSs, "Sw": ast.OpSw, "Ts": ast.OpTs, "Tw": ast.OpTw,
}

func (p *sparser) parseList() (ast.Expr, error) {
	head, err := p.next()
	if err != nil {
		return nil, err
	}

	var e ast.Expr
	switch {
	case head == "member":
		base, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		e = p.b.Member(ast.Span{}, base, name)

	case head == "index":
		base, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e = p.b.Index(ast.Span{}, base, idx)

	case head == "at":
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e = p.b.At(ast.Span{}, name, arg)

	case head == "paren":
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e = p.b.Paren(ast.Span{}, arg)

	case head == "!":
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e = p.b.Not(ast.Span{}, arg)

	case head == "?":
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e = p.b.Choice(ast.Span{}, cond, then, els)

	case head == "int":
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		height, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		time, err := p.maybeTimeInterval()
		if err != nil {
			return nil, err
		}
		e = p.b.Integ(ast.Span{}, body, height, time)

	default:
		if op, ok := binOpByToken[head]; ok {
			lhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if tok, ok := p.peek(); ok && tok == ")" {
				if head != "-" {
					return nil, fmt.Errorf("operator %q requires two operands", head)
				}
				e = p.b.Neg(ast.Span{}, lhs)
				break
			}
			rhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			e = p.b.Bin(ast.Span{}, op, lhs, rhs)
			break
		}
		if top, ok := tUnaryByToken[head]; ok {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			time, err := p.maybeTimeInterval()
			if err != nil {
				return nil, err
			}
			e = p.b.TUnary(ast.Span{}, top, time, arg)
			break
		}
		if top, ok := tBinaryByToken[head]; ok {
			lhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			rhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			time, err := p.maybeTimeInterval()
			if err != nil {
				return nil, err
			}
			e = p.b.TBinary(ast.Span{}, top, time, lhs, rhs)
			break
		}
		return nil, fmt.Errorf("unknown operator %q", head)
	}

	closing, err := p.next()
	if err != nil {
		return nil, err
	}
	if closing != ")" {
		return nil, fmt.Errorf("expected ')', got %q", closing)
	}
	return e, nil
}

// maybeTimeInterval reads a trailing [lo hi] pair, either side of which may
// be "_" for a one-sided bound. Absent entirely, the operator is unbounded.
func (p *sparser) maybeTimeInterval() (*ast.TimeInterval, error) {
	tok, ok := p.peek()
	if !ok || tok == ")" {
		return nil, nil
	}
	lo, err := p.parseTimeArg()
	if err != nil {
		return nil, err
	}
	hi, err := p.parseTimeArg()
	if err != nil {
		return nil, err
	}
	t := p.b.Time(lo, hi)
	return &t, nil
}

func (p *sparser) parseTimeArg() (ast.Expr, error) {
	if tok, ok := p.peek(); ok && tok == "_" {
		p.pos++
		return nil, nil
	}
	return p.parseExpr()
}
