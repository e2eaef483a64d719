package ir

import (
	"fmt"
	"strings"
)

// Print renders a function as readable IR text, used by the CLI's
// `compile` output and by golden-style tests.
func Print(f *Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%%frst: %s, %%last: %s, %%conf: %s) -> bool {\n",
		f.Name, f.Frst.Typ, f.Last.Typ, f.Conf.Typ)
	for _, b := range f.Blocks {
		fmt.Fprintf(&sb, "%s:\n", b.Name)
		for _, p := range b.Phis {
			fmt.Fprintf(&sb, "  %s = phi %s %s\n", p, p.Typ, printIncoming(p))
		}
		for _, i := range b.Instrs {
			fmt.Fprintf(&sb, "  %s = %s %s %s\n", i, i.Op, i.Typ, printArgs(i.Args))
		}
		fmt.Fprintf(&sb, "  %s\n", printTerm(b.Term))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func printArgs(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = printValue(a)
	}
	return strings.Join(parts, ", ")
}

func printIncoming(p *Phi) string {
	parts := make([]string, len(p.Incoming))
	for i, v := range p.Incoming {
		parts[i] = printValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func printValue(v Value) string {
	switch x := v.(type) {
	case *Const:
		return x.String()
	case *Param:
		return x.String()
	case *Instr:
		return x.String()
	case *Phi:
		return x.String()
	default:
		return "<?>"
	}
}

func printTerm(t *Term) string {
	if t == nil {
		return "<no terminator>"
	}
	switch t.Kind {
	case TermRet:
		return "ret " + printValue(t.Value)
	case TermBr:
		return "br " + t.Targets[0].Name
	case TermCondBr:
		return fmt.Sprintf("br %s, %s, %s", printValue(t.Value), t.Targets[0].Name, t.Targets[1].Name)
	default:
		return "<?>"
	}
}
