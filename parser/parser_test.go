package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func treeOpts() []cmp.Option {
	return []cmp.Option{
		cmp.FilterPath(isLoc, cmp.Ignore()),
		cmpopts.IgnoreUnexported(entityDef{}, Lambda{}, ObjectLiteral{}, TypeAlias{}),
	}
}

func isLoc(path cmp.Path) bool {
	for _, s := range path {
		if s.String() == ".L" {
			return true
		}
	}
	return false
}

// parseString parses src as a single-file module and returns the
// module node, the ok flag, and the diagnostic text.
func parseString(t *testing.T, src string) (*Class, bool, string) {
	t.Helper()
	program, ok, out := parseProgram(t, src)
	if len(program.Members) == 0 {
		t.Fatalf("no module node; diagnostics:\n%s", out)
	}
	return program.Members[0].(*Class), ok, out
}

func parseProgram(t *testing.T, src string) (*Class, bool, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "test.tarn")
	if err := os.WriteFile(file, []byte(src), 0666); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	ok, program := Parse(file, "", &out)
	return program, ok, out.String()
}

func findMember(members []Member, name string) Member {
	for _, m := range members {
		switch m := m.(type) {
		case *Field:
			if m.Name == name {
				return m
			}
		case *Function:
			if m.Name == name {
				return m
			}
		case *Class:
			if m.Name == name {
				return m
			}
		case *Interface:
			if m.Name == name {
				return m
			}
		case *TypeAlias:
			if m.Name == name {
				return m
			}
		}
	}
	return nil
}

// parseExpr parses expr in a function body with a and b bound.
func parseExpr(t *testing.T, expr string) Expr {
	t.Helper()
	src := "class K { test(a: I32, b: I32): I32 { " + expr + " } }"
	module, ok, out := parseString(t, src)
	if !ok {
		t.Fatalf("parse of %q failed:\n%s", expr, out)
	}
	cls := findMember(module.Members, "K").(*Class)
	fn := findMember(cls.Members, "test").(*Function)
	if len(fn.Lambda.Body) != 1 {
		t.Fatalf("got %d body expressions, want 1", len(fn.Lambda.Body))
	}
	return fn.Lambda.Body[0]
}

// parseType parses a type expression through a type alias.
func parseType(t *testing.T, typ string) Type {
	t.Helper()
	return parseTypeDecl(t, "type T = "+typ+";")
}

func parseTypeDecl(t *testing.T, decl string) Type {
	t.Helper()
	module, ok, out := parseString(t, decl)
	if !ok {
		t.Fatalf("parse of %q failed:\n%s", decl, out)
	}
	alias := findMember(module.Members, "T").(*TypeAlias)
	return alias.Inherits
}

func TestTrivialClass(t *testing.T) {
	module, ok, out := parseString(t, "class C { x: I32 = 0; }")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	if len(module.Members) != 1 {
		t.Fatalf("got %d module members, want 1", len(module.Members))
	}
	cls := module.Members[0].(*Class)
	if cls.Name != "C" {
		t.Fatalf("class name %q", cls.Name)
	}
	if len(cls.Members) != 2 {
		t.Fatalf("got %d class members, want field and create", len(cls.Members))
	}

	wantField := &Field{
		Name: "x",
		Type: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "I32"}}},
		Init: &Lambda{Result: &InferType{}, Body: []Expr{&Int{}}},
	}
	if diff := cmp.Diff(wantField, cls.Members[0], treeOpts()...); diff != "" {
		t.Error(diff)
	}

	wantCreate := &Function{
		Name: "create",
		Lambda: &Lambda{
			Result: &IsectType{Types: []Type{
				&TypeRef{Names: []TypeNamePart{&TypeName{Name: "C"}}},
				&Iso{},
			}},
			Body: []Expr{&New{}},
		},
	}
	if diff := cmp.Diff(wantCreate, cls.Members[1], treeOpts()...); diff != "" {
		t.Error(diff)
	}
	if cls.Symbols().Get("create") != cls.Members[1] {
		t.Error("create is not bound in the class scope")
	}
}

func TestSynthesizedCreate(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"class C {}", true},
		{"class C { x: I32 = 0; y: I32 = 1; }", true},
		{"class C { x: I32; }", false},
		{"class C { x: I32 = 0; y: I32; }", false},
	}
	for _, test := range tests {
		module, ok, out := parseString(t, test.src)
		if !ok {
			t.Errorf("%q: parse failed:\n%s", test.src, out)
			continue
		}
		cls := module.Members[0].(*Class)
		create := cls.Symbols().Get("create")
		if got := create != nil; got != test.want {
			t.Errorf("%q: create bound=%v, want %v", test.src, got, test.want)
			continue
		}
		if !test.want {
			continue
		}
		fn := create.(*Function)
		if len(fn.Lambda.Params) != 0 {
			t.Errorf("%q: synthesized create has parameters", test.src)
		}
	}
}

func TestUserCreateNotDuplicated(t *testing.T) {
	module, ok, out := parseString(t, "class C { create(): C { new () } }")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	cls := module.Members[0].(*Class)
	if len(cls.Members) != 1 {
		t.Fatalf("got %d members, want only the user create", len(cls.Members))
	}
	fn := cls.Symbols().Get("create").(*Function)
	if fn != cls.Members[0] {
		t.Error("create is not bound to the user function")
	}
}

func TestCreateWithTypeParams(t *testing.T) {
	module, ok, out := parseString(t, "class C[X, Y...] {}")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	cls := module.Members[0].(*Class)
	fn := cls.Symbols().Get("create").(*Function)
	isect := fn.Lambda.Result.(*IsectType)
	tr := isect.Types[0].(*TypeRef)
	name := tr.Names[0].(*TypeName)
	if name.Name != "C" || len(name.TypeArgs) != 2 {
		t.Fatalf("create result names %q with %d args", name.Name, len(name.TypeArgs))
	}
	arg := name.TypeArgs[0].(*TypeRef)
	if arg.Names[0].(*TypeName).Name != "X" {
		t.Errorf("first type argument is %v", name.TypeArgs[0])
	}
	// The list-kind parameter stays a list in the synthesized result.
	if tl, ok := name.TypeArgs[1].(*TypeList); !ok || tl.Name != "Y" {
		t.Errorf("second type argument is %v, want the type list Y", name.TypeArgs[1])
	}
}

func TestTypeDNF(t *testing.T) {
	got := parseType(t, "(A & (B | C)) | throw D")
	want := union(
		isect(tA, tB),
		isect(tA, tC),
		thrown(tD),
	)
	if diff := cmp.Diff(want, got, treeOpts()...); diff != "" {
		t.Error(diff)
	}
}

func TestTypes(t *testing.T) {
	tests := []struct {
		typ  string
		want Type
	}{
		{"A", tA},
		{"iso", &Iso{}},
		{"mut", &Mut{}},
		{"imm", &Imm{}},
		{"Self", &Self{}},
		{"A | B", union(tA, tB)},
		{"A & B", isect(tA, tB)},
		{"A & B & C", isect(tA, tB, tC)},
		{"A | B | C", union(tA, tB, tC)},
		{"throw A", thrown(tA)},
		{"throw (A | B)", union(thrown(tA), thrown(tB))},
		{"(A)", tA},
		{"()", &TupleType{}},
		{"(A, B)", &TupleType{Types: []Type{tA, tB}}},
		{"A -> B", &FunctionType{Left: tA, Right: tB}},
		{
			"A -> B -> C",
			&FunctionType{Left: tA, Right: &FunctionType{Left: tB, Right: tC}},
		},
		{"A ~> B", &ViewType{Left: tA, Right: tB}},
		{"A <~ B", &ExtractType{Left: tA, Right: tB}},
		{"A & iso", isect(tA, &Iso{})},
		{
			"m::T[A]",
			&TypeRef{Names: []TypeNamePart{
				&TypeName{Name: "m"},
				&TypeName{Name: "T", TypeArgs: []Type{tA}},
			}},
		},
	}
	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			got := parseType(t, test.typ)
			if diff := cmp.Diff(test.want, got, treeOpts()...); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestTypeList(t *testing.T) {
	got := parseTypeDecl(t, "type T[X...] = (X...);")
	want := &TypeList{Name: "X"}
	if diff := cmp.Diff(Type(want), got, treeOpts()...); diff != "" {
		t.Error(diff)
	}
}

func TestUndeclaredTypeList(t *testing.T) {
	_, ok, out := parseString(t, "class C { x: T...; }")
	if ok {
		t.Fatal("parse succeeded")
	}
	if !strings.Contains(out, "Couldn't find a definition of this type list") {
		t.Errorf("diagnostics:\n%s", out)
	}
}

func TestTypeListWrongKind(t *testing.T) {
	_, ok, out := parseString(t, "class C[X] { f: (X...) = { 0 }; }")
	if ok {
		t.Fatal("parse succeeded")
	}
	if !strings.Contains(out, "Expected a type list") ||
		!strings.Contains(out, "Definition is here") {
		t.Errorf("diagnostics:\n%s", out)
	}
}

func TestExprs(t *testing.T) {
	applyRef := func() *TypeRef {
		return &TypeRef{Names: []TypeNamePart{&TypeName{Name: "apply"}}}
	}
	tests := []struct {
		expr string
		want Expr
	}{
		{"a", &Ref{Name: "a"}},
		{"42", &Int{}},
		{"1.5", &Float{}},
		{"0x1F", &Hex{}},
		{"0b10", &Binary{}},
		{"true", &Bool{}},
		{`"s"`, &EscapedString{}},
		{"`s`", &UnescapedString{}},
		{"'c'", &Character{}},
		{"(a, b)", &Tuple{Seq: []Expr{&Ref{Name: "a"}, &Ref{Name: "b"}}}},

		{
			"a + b",
			&Select{
				Expr:    &Ref{Name: "a"},
				TypeRef: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "+"}}},
				Args:    &Ref{Name: "b"},
			},
		},
		{
			// Adjacency is application.
			"a b",
			&Select{
				Expr:    &Ref{Name: "a"},
				TypeRef: applyRef(),
				Args:    &Ref{Name: "b"},
			},
		},
		{
			"a(b)",
			&Select{
				Expr:    &Ref{Name: "a"},
				TypeRef: applyRef(),
				Args:    &Tuple{Seq: []Expr{&Ref{Name: "b"}}},
			},
		},
		{
			"a.foo(b)",
			&Select{
				Expr:    &Ref{Name: "a"},
				TypeRef: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "foo"}}},
				Args:    &Tuple{Seq: []Expr{&Ref{Name: "b"}}},
			},
		},
		{
			"a.foo.bar",
			&Select{
				Expr: &Select{
					Expr:    &Ref{Name: "a"},
					TypeRef: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "foo"}}},
				},
				TypeRef: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "bar"}}},
			},
		},

		{
			"let x = a",
			&Assign{
				Left:  &Let{Name: "x", Type: &InferType{}},
				Right: &Ref{Name: "a"},
			},
		},
		{
			"var x",
			&Var{Name: "x", Type: &InferType{}},
		},
		{"throw a", &Throw{Expr: &Ref{Name: "a"}}},
		{
			"a: I32",
			&Oftype{
				Expr: &Ref{Name: "a"},
				Type: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "I32"}}},
			},
		},
		{"a = b", &Assign{Left: &Ref{Name: "a"}, Right: &Ref{Name: "b"}}},

		{"new (a)", &New{Args: &Tuple{Seq: []Expr{&Ref{Name: "a"}}}}},
		{"new @r (a)", &New{In: "r", Args: &Tuple{Seq: []Expr{&Ref{Name: "a"}}}}},
		{
			"new Foo {}",
			&ObjectLiteral{
				Inherits: &TypeRef{Names: []TypeNamePart{&TypeName{Name: "Foo"}}},
			},
		},

		{
			"when a { a }",
			&When{
				WaitFor: &Ref{Name: "a"},
				Behaviour: &Lambda{
					Result: &InferType{},
					Body:   []Expr{&Ref{Name: "a"}},
				},
			},
		},
		{
			"match a { { x => x } }",
			&Match{
				Test: &Ref{Name: "a"},
				Cases: []Expr{&Lambda{
					Result: &InferType{},
					Params: []Expr{&Param{Name: "x", Type: &InferType{}}},
					Body:   []Expr{&Ref{Name: "x"}},
				}},
			},
		},
		{
			"try { a } catch { { x => x } }",
			&Try{
				Body: &Lambda{
					Result: &InferType{},
					Body:   []Expr{&Ref{Name: "a"}},
				},
				Catches: []Expr{&Lambda{
					Result: &InferType{},
					Params: []Expr{&Param{Name: "x", Type: &InferType{}}},
					Body:   []Expr{&Ref{Name: "x"}},
				}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			got := parseExpr(t, test.expr)
			if diff := cmp.Diff(test.want, got, treeOpts()...); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestLambdaDisambiguation(t *testing.T) {
	src := `class K {
		f: X = { x: I32, y: I32 => x };
		g: X = { a };
		h: X = { let n; { n } };
	}`
	module, ok, out := parseString(t, src)
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	cls := module.Members[0].(*Class)

	// Parameters before the arrow.
	f := findMember(cls.Members, "f").(*Field)
	lam := f.Init.(*Lambda).Body[0].(*Lambda)
	if len(lam.Params) != 2 {
		t.Fatalf("f: got %d parameters, want 2", len(lam.Params))
	}
	if len(lam.Body) != 1 || lam.Body[0].Kind() != KindRef {
		t.Errorf("f: body is %v, want a reference", lam.Body)
	}

	// No arrow: no parameters, and an unbound name is a selector.
	g := findMember(cls.Members, "g").(*Field)
	lam = g.Init.(*Lambda).Body[0].(*Lambda)
	if len(lam.Params) != 0 {
		t.Fatalf("g: got %d parameters, want 0", len(lam.Params))
	}
	sel, ok2 := lam.Body[0].(*Select)
	if !ok2 || sel.TypeRef.Names[0].(*TypeName).Name != "a" {
		t.Errorf("g: body is %v, want a selector on a", lam.Body[0])
	}

	// A locally bound name is a reference in a nested lambda.
	h := findMember(cls.Members, "h").(*Field)
	outer := h.Init.(*Lambda).Body[0].(*Lambda)
	inner := outer.Body[1].(*Lambda)
	if ref, ok2 := inner.Body[0].(*Ref); !ok2 || ref.Name != "n" {
		t.Errorf("h: inner body is %v, want the reference n", inner.Body[0])
	}
}

func TestErrorRecovery(t *testing.T) {
	module, ok, out := parseString(t, "class C { bad syntax ; good: I32 = 0; }")
	if ok {
		t.Fatal("parse succeeded")
	}
	if out == "" {
		t.Fatal("no diagnostics")
	}
	cls := module.Members[0].(*Class)
	good, _ := findMember(cls.Members, "good").(*Field)
	if good == nil {
		t.Fatalf("field good was not recovered; members: %v", cls.Members)
	}
	wantType := &TypeRef{Names: []TypeNamePart{&TypeName{Name: "I32"}}}
	if diff := cmp.Diff(Type(wantType), good.Type, treeOpts()...); diff != "" {
		t.Error(diff)
	}
	if good.Init == nil {
		t.Error("field good lost its initializer")
	}
}

func TestRedefinition(t *testing.T) {
	module, ok, out := parseString(t, "class C {} class C {}")
	if ok {
		t.Fatal("parse succeeded")
	}
	if !strings.Contains(out, "previous definition") {
		t.Errorf("diagnostics:\n%s", out)
	}
	// Both class nodes survive; the scope keeps the first binding.
	if len(module.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(module.Members))
	}
	if module.Symbols().Get("C") != module.Members[0] {
		t.Error("module scope does not retain the first binding")
	}
}

func TestEmptyInput(t *testing.T) {
	module, ok, out := parseString(t, "")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	if out != "" {
		t.Errorf("diagnostics on empty input:\n%s", out)
	}
	if len(module.Members) != 0 {
		t.Errorf("got %d members, want 0", len(module.Members))
	}
}

func TestModuleDefOnly(t *testing.T) {
	module, ok, out := parseString(t, "module[X]: T;")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	if len(module.Members) != 0 {
		t.Fatalf("got %d members, want 0", len(module.Members))
	}
	// The moduledef's clauses move onto the module node.
	if len(module.TypeParms) != 1 {
		t.Errorf("got %d type parameters, want 1", len(module.TypeParms))
	}
	if module.Inherits == nil {
		t.Error("module inheritance clause was not moved")
	}
	if module.Symbols().Get("create") != nil {
		t.Error("module node gained a synthetic create")
	}
}

func TestDuplicateModuleDef(t *testing.T) {
	_, ok, out := parseString(t, "module; module;")
	if ok {
		t.Fatal("parse succeeded")
	}
	if !strings.Contains(out, "already been defined") {
		t.Errorf("diagnostics:\n%s", out)
	}
}

func TestBadInheritance(t *testing.T) {
	tests := []string{
		"class C: iso {}",
		"class C: (A, B) {}",
		"module: A -> B;",
	}
	for _, src := range tests {
		_, ok, out := parseString(t, src)
		if ok {
			t.Errorf("%q: parse succeeded", src)
			continue
		}
		if !strings.Contains(out, "can't inherit") {
			t.Errorf("%q: diagnostics:\n%s", src, out)
		}
	}
}

func TestInheritIsectOfRefsOK(t *testing.T) {
	_, ok, out := parseString(t, "class C: A & B {}")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
}

func TestFunctionParamErrors(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"class C { f(x) { x } }", "must have types"},
		{"class C { f(4) { 4 } }", "can't be patterns"},
	}
	for _, test := range tests {
		_, ok, out := parseString(t, test.src)
		if ok {
			t.Errorf("%q: parse succeeded", test.src)
			continue
		}
		if !strings.Contains(out, test.want) {
			t.Errorf("%q: diagnostics:\n%s", test.src, out)
		}
	}
}

func TestTryBlockParamError(t *testing.T) {
	_, ok, out := parseString(t, "class C { f(): A { try { x => x } catch {} } }")
	if ok {
		t.Fatal("parse succeeded")
	}
	if !strings.Contains(out, "A try block can't have parameters") {
		t.Errorf("diagnostics:\n%s", out)
	}
}

func TestUnnamedFunctionIsApply(t *testing.T) {
	module, ok, out := parseString(t, "class C { (x: I32): I32 { x } }")
	if !ok {
		t.Fatalf("parse failed:\n%s", out)
	}
	cls := module.Members[0].(*Class)
	fn, _ := cls.Members[0].(*Function)
	if fn == nil || fn.Name != "apply" {
		t.Fatalf("member is %v, want the function apply", cls.Members[0])
	}
	if cls.Symbols().Get("apply") != fn {
		t.Error("apply is not bound in the class scope")
	}
}

func TestInvariants(t *testing.T) {
	src := `
		module;
		using "./dep";
		type T[X, Y...] = (A & (B | throw C)) | (X ~> A) -> B;
		interface I[X]: A { m(x: X): X; }
		class C: A & B {
			x: I32 = 0;
			f[Z](p: Z | A, q: A = a): Z & iso {
				let y = p;
				when y { y.go(q) };
				match y { { v => v } };
				try { y } catch { { e => e } };
				new (y)
			}
		}
	`
	dir := t.TempDir()
	dep := filepath.Join(dir, "dep")
	if err := os.Mkdir(dep, 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dep, "d.tarn"), []byte("class D {}"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.tarn"), []byte(src), 0666); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	ok, program := Parse(filepath.Join(dir, "main.tarn"), "", &out)
	if !ok {
		t.Fatalf("parse failed:\n%s", out.String())
	}

	Walk(program, func(n Node) bool {
		switch n := n.(type) {
		case *IsectType:
			for _, op := range n.Types {
				if _, nested := op.(*IsectType); nested {
					t.Errorf("nested intersection in %v", n)
				}
				if _, throw := op.(*ThrowType); throw {
					t.Errorf("throw under intersection in %v", n)
				}
			}
		case *UnionType:
			for _, op := range n.Types {
				if _, nested := op.(*UnionType); nested {
					t.Errorf("nested union in %v", n)
				}
			}
		case *ThrowType:
			if _, u := n.Type.(*UnionType); u {
				t.Errorf("union under throw in %v", n)
			}
		case *TypeRef:
			if len(n.Names) == 0 {
				t.Error("type reference with no components")
			}
		}
		return true
	})

	// Locations are well-formed spans into their source.
	Walk(program, func(n Node) bool {
		l := n.Loc()
		if l.Src == nil {
			return true
		}
		if l.Start < 0 || l.End < l.Start || l.End > len(l.Src.Text) {
			t.Errorf("%v has span (%d,%d) outside its source", n.Kind(), l.Start, l.End)
		}
		return true
	})

	// Every scope chain terminates at the program root.
	Walk(program, func(n Node) bool {
		scoped, ok := n.(Scoped)
		if !ok {
			return true
		}
		st := scoped.Symbols()
		for depth := 0; st.Parent() != nil; depth++ {
			if depth > 100 {
				t.Fatalf("scope chain from %v does not terminate", n.Kind())
			}
			st = st.Parent().Symbols()
		}
		if st != program.Symbols() {
			t.Errorf("scope chain from %v does not reach the program", n.Kind())
		}
		return true
	})

	// $module-N keys pair off with distinct import paths.
	seen := map[string]bool{}
	for i, m := range program.Members {
		mod := m.(*Class)
		if program.Symbols().Get(mod.Name) != m {
			t.Errorf("%s is not bound to its module node", mod.Name)
		}
		if i == 0 && mod.Name != "$module-0" {
			t.Errorf("first module is %s", mod.Name)
		}
		if seen[mod.Name] {
			t.Errorf("duplicate module key %s", mod.Name)
		}
		seen[mod.Name] = true
	}
}
