package parser

import (
	"strings"
)

// Debug printing. The output is a compact, mostly re-readable source
// form; partial nodes from error recovery print a ? where a child is
// missing.

func (t *TypeRef) String() string       { return t.buildString(new(strings.Builder)).String() }
func (t *TypeName) String() string      { return t.buildString(new(strings.Builder)).String() }
func (t *TupleType) String() string     { return t.buildString(new(strings.Builder)).String() }
func (t *TypeList) String() string      { return t.buildString(new(strings.Builder)).String() }
func (t *Iso) String() string           { return t.buildString(new(strings.Builder)).String() }
func (t *Mut) String() string           { return t.buildString(new(strings.Builder)).String() }
func (t *Imm) String() string           { return t.buildString(new(strings.Builder)).String() }
func (t *Self) String() string          { return t.buildString(new(strings.Builder)).String() }
func (t *IsectType) String() string     { return t.buildString(new(strings.Builder)).String() }
func (t *UnionType) String() string     { return t.buildString(new(strings.Builder)).String() }
func (t *ThrowType) String() string     { return t.buildString(new(strings.Builder)).String() }
func (t *ViewType) String() string      { return t.buildString(new(strings.Builder)).String() }
func (t *ExtractType) String() string   { return t.buildString(new(strings.Builder)).String() }
func (t *FunctionType) String() string  { return t.buildString(new(strings.Builder)).String() }
func (t *InferType) String() string     { return t.buildString(new(strings.Builder)).String() }
func (e *Tuple) String() string         { return e.buildString(new(strings.Builder)).String() }
func (e *Ref) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *Select) String() string        { return e.buildString(new(strings.Builder)).String() }
func (e *New) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *ObjectLiteral) String() string { return e.buildString(new(strings.Builder)).String() }
func (e *When) String() string          { return e.buildString(new(strings.Builder)).String() }
func (e *Try) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *Match) String() string         { return e.buildString(new(strings.Builder)).String() }
func (e *Lambda) String() string        { return e.buildString(new(strings.Builder)).String() }
func (e *Throw) String() string         { return e.buildString(new(strings.Builder)).String() }
func (e *Let) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *Var) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *Param) String() string         { return e.buildString(new(strings.Builder)).String() }
func (e *Oftype) String() string        { return e.buildString(new(strings.Builder)).String() }
func (e *Assign) String() string        { return e.buildString(new(strings.Builder)).String() }
func (e *Int) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *Float) String() string         { return e.buildString(new(strings.Builder)).String() }
func (e *Hex) String() string           { return e.buildString(new(strings.Builder)).String() }
func (e *Binary) String() string        { return e.buildString(new(strings.Builder)).String() }
func (e *Bool) String() string          { return e.buildString(new(strings.Builder)).String() }
func (e *EscapedString) String() string { return e.buildString(new(strings.Builder)).String() }
func (e *UnescapedString) String() string {
	return e.buildString(new(strings.Builder)).String()
}
func (e *Character) String() string { return e.buildString(new(strings.Builder)).String() }
func (m *Field) String() string     { return m.buildString(new(strings.Builder)).String() }
func (m *Function) String() string  { return m.buildString(new(strings.Builder)).String() }
func (m *TypeAlias) String() string { return m.buildString(new(strings.Builder)).String() }
func (m *Using) String() string     { return m.buildString(new(strings.Builder)).String() }
func (m *Class) String() string     { return m.buildString(new(strings.Builder)).String() }
func (m *Interface) String() string { return m.buildString(new(strings.Builder)).String() }
func (m *Module) String() string    { return m.buildString(new(strings.Builder)).String() }
func (t *TypeParam) String() string { return t.buildString(new(strings.Builder)).String() }
func (t *TypeParamList) String() string {
	return t.buildString(new(strings.Builder)).String()
}

func buildOpt(s *strings.Builder, n Node) *strings.Builder {
	if n == nil || isNilNode(n) {
		s.WriteString("?")
		return s
	}
	return n.buildString(s)
}

// isNilNode reports whether a non-nil interface holds a nil node.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *TypeRef:
		return n == nil
	case *Lambda:
		return n == nil
	default:
		return false
	}
}

func buildTypes(s *strings.Builder, types []Type, sep string) *strings.Builder {
	for i, t := range types {
		if i > 0 {
			s.WriteString(sep)
		}
		buildOpt(s, t)
	}
	return s
}

func buildExprs(s *strings.Builder, exprs []Expr, sep string) *strings.Builder {
	for i, e := range exprs {
		if i > 0 {
			s.WriteString(sep)
		}
		buildOpt(s, e)
	}
	return s
}

func buildTypeArgs(s *strings.Builder, args []Type) *strings.Builder {
	if len(args) == 0 {
		return s
	}
	s.WriteString("[")
	buildTypes(s, args, ", ")
	s.WriteString("]")
	return s
}

func (t *TypeRef) buildString(s *strings.Builder) *strings.Builder {
	for i, name := range t.Names {
		if i > 0 {
			s.WriteString("::")
		}
		name.buildString(s)
	}
	return s
}

func (t *TypeName) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(t.Name)
	return buildTypeArgs(s, t.TypeArgs)
}

func (t *TupleType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildTypes(s, t.Types, ", ")
	s.WriteString(")")
	return s
}

func (t *TypeList) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(t.Name)
	s.WriteString("...")
	return s
}

func (t *Iso) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("iso")
	return s
}

func (t *Mut) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("mut")
	return s
}

func (t *Imm) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("imm")
	return s
}

func (t *Self) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("Self")
	return s
}

func (t *IsectType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildTypes(s, t.Types, " & ")
	s.WriteString(")")
	return s
}

func (t *UnionType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildTypes(s, t.Types, " | ")
	s.WriteString(")")
	return s
}

func (t *ThrowType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("throw ")
	return buildOpt(s, t.Type)
}

func (t *ViewType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildOpt(s, t.Left)
	s.WriteString(" ~> ")
	buildOpt(s, t.Right)
	s.WriteString(")")
	return s
}

func (t *ExtractType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildOpt(s, t.Left)
	s.WriteString(" <~ ")
	buildOpt(s, t.Right)
	s.WriteString(")")
	return s
}

func (t *FunctionType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildOpt(s, t.Left)
	s.WriteString(" -> ")
	buildOpt(s, t.Right)
	s.WriteString(")")
	return s
}

func (t *InferType) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("_")
	return s
}

func (e *Tuple) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("(")
	buildExprs(s, e.Seq, ", ")
	s.WriteString(")")
	return s
}

func (e *Ref) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.Name)
	return s
}

func (e *Select) buildString(s *strings.Builder) *strings.Builder {
	if e.Expr != nil {
		e.Expr.buildString(s)
	}
	s.WriteString(".")
	buildOpt(s, e.TypeRef)
	if e.Args != nil {
		s.WriteString(" ")
		e.Args.buildString(s)
	}
	return s
}

func (e *New) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("new")
	if e.In != "" {
		s.WriteString(" @")
		s.WriteString(e.In)
	}
	if e.Args != nil {
		s.WriteString(" ")
		e.Args.buildString(s)
	}
	return s
}

func (e *ObjectLiteral) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("new ")
	if e.In != "" {
		s.WriteString("@")
		s.WriteString(e.In)
		s.WriteString(" ")
	}
	if e.Inherits != nil {
		e.Inherits.buildString(s)
		s.WriteString(" ")
	}
	s.WriteString("{ ")
	for _, m := range e.Members {
		m.buildString(s)
		s.WriteString(" ")
	}
	s.WriteString("}")
	return s
}

func (e *When) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("when ")
	buildOpt(s, e.WaitFor)
	s.WriteString(" ")
	return buildOpt(s, e.Behaviour)
}

func (e *Try) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("try ")
	buildOpt(s, e.Body)
	s.WriteString(" catch { ")
	buildExprs(s, e.Catches, " ")
	s.WriteString(" }")
	return s
}

func (e *Match) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("match ")
	buildOpt(s, e.Test)
	s.WriteString(" { ")
	buildExprs(s, e.Cases, " ")
	s.WriteString(" }")
	return s
}

func (e *Lambda) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("{ ")
	if len(e.TypeParms) > 0 {
		s.WriteString("[")
		for i, tp := range e.TypeParms {
			if i > 0 {
				s.WriteString(", ")
			}
			tp.buildString(s)
		}
		s.WriteString("] ")
	}
	if len(e.Params) > 0 {
		buildExprs(s, e.Params, ", ")
		s.WriteString(" => ")
	}
	buildExprs(s, e.Body, "; ")
	s.WriteString(" }")
	return s
}

func (e *Throw) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("throw ")
	return buildOpt(s, e.Expr)
}

func (e *Let) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("let ")
	s.WriteString(e.Name)
	return s
}

func (e *Var) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("var ")
	s.WriteString(e.Name)
	return s
}

func (e *Param) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.Name)
	if e.Type != nil && e.Type.Kind() != KindInferType {
		s.WriteString(": ")
		e.Type.buildString(s)
	}
	if e.Default != nil {
		s.WriteString(" = ")
		e.Default.buildString(s)
	}
	return s
}

func (e *Oftype) buildString(s *strings.Builder) *strings.Builder {
	buildOpt(s, e.Expr)
	s.WriteString(": ")
	return buildOpt(s, e.Type)
}

func (e *Assign) buildString(s *strings.Builder) *strings.Builder {
	buildOpt(s, e.Left)
	s.WriteString(" = ")
	return buildOpt(s, e.Right)
}

func (e *Int) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *Float) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *Hex) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *Binary) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *Bool) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *EscapedString) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *UnescapedString) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (e *Character) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(e.L.Text())
	return s
}

func (m *Field) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(m.Name)
	if m.Type != nil {
		s.WriteString(": ")
		m.Type.buildString(s)
	}
	if m.Init != nil {
		s.WriteString(" = ")
		m.Init.buildString(s)
	}
	s.WriteString(";")
	return s
}

func (m *Function) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(m.Name)
	if m.Lambda != nil {
		if len(m.Lambda.Params) > 0 {
			s.WriteString("(")
			buildExprs(s, m.Lambda.Params, ", ")
			s.WriteString(")")
		} else {
			s.WriteString("()")
		}
		if m.Lambda.Result != nil {
			s.WriteString(": ")
			m.Lambda.Result.buildString(s)
		}
		s.WriteString(" ")
		m.Lambda.buildString(s)
	}
	return s
}

func (m *TypeAlias) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("type ")
	s.WriteString(m.Name)
	s.WriteString(" = ")
	buildOpt(s, m.Inherits)
	s.WriteString(";")
	return s
}

func (m *Using) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("using ")
	buildOpt(s, m.Type)
	s.WriteString(";")
	return s
}

func (m *entityDef) buildEntity(s *strings.Builder, keyword string) *strings.Builder {
	s.WriteString(keyword)
	s.WriteString(" ")
	s.WriteString(m.Name)
	if len(m.TypeParms) > 0 {
		s.WriteString("[")
		for i, tp := range m.TypeParms {
			if i > 0 {
				s.WriteString(", ")
			}
			tp.buildString(s)
		}
		s.WriteString("]")
	}
	if m.Inherits != nil {
		s.WriteString(": ")
		m.Inherits.buildString(s)
	}
	s.WriteString(" { ")
	for _, mem := range m.Members {
		mem.buildString(s)
		s.WriteString(" ")
	}
	s.WriteString("}")
	return s
}

func (m *Class) buildString(s *strings.Builder) *strings.Builder {
	return m.buildEntity(s, "class")
}

func (m *Interface) buildString(s *strings.Builder) *strings.Builder {
	return m.buildEntity(s, "interface")
}

func (m *Module) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("module")
	if m.Inherits != nil {
		s.WriteString(": ")
		m.Inherits.buildString(s)
	}
	s.WriteString(";")
	return s
}

func (t *TypeParam) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(t.Name)
	if t.Upper != nil {
		s.WriteString(": ")
		t.Upper.buildString(s)
	}
	if t.Dflt != nil {
		s.WriteString(" = ")
		t.Dflt.buildString(s)
	}
	return s
}

func (t *TypeParamList) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString(t.Name)
	s.WriteString("...")
	if t.Upper != nil {
		s.WriteString(": ")
		t.Upper.buildString(s)
	}
	if t.Dflt != nil {
		s.WriteString(" = ")
		t.Dflt.buildString(s)
	}
	return s
}
