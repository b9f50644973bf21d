package parser

import (
	"strings"

	"github.com/tarn-lang/tarn/loc"
)

// A Kind discriminates AST node kinds.
type Kind int

const (
	// Types.
	KindTypeRef Kind = iota
	KindTypeName
	KindModuleName
	KindTupleType
	KindTypeList
	KindIso
	KindMut
	KindImm
	KindSelf
	KindIsectType
	KindUnionType
	KindThrowType
	KindViewType
	KindExtractType
	KindFunctionType
	KindInferType

	// Expressions.
	KindTuple
	KindRef
	KindSelect
	KindNew
	KindObjectLiteral
	KindWhen
	KindTry
	KindMatch
	KindLambda
	KindThrow
	KindLet
	KindVar
	KindParam
	KindOftype
	KindAssign
	KindInt
	KindFloat
	KindHex
	KindBinary
	KindBool
	KindEscapedString
	KindUnescapedString
	KindCharacter

	// Members.
	KindField
	KindFunction
	KindTypeAlias
	KindUsing
	KindClass
	KindInterface
	KindModule

	// Type parameters.
	KindTypeParam
	KindTypeParamList
)

var kindNames = [...]string{
	KindTypeRef:         "type reference",
	KindTypeName:        "type name",
	KindModuleName:      "module name",
	KindTupleType:       "tuple type",
	KindTypeList:        "type list",
	KindIso:             "iso",
	KindMut:             "mut",
	KindImm:             "imm",
	KindSelf:            "Self",
	KindIsectType:       "intersection type",
	KindUnionType:       "union type",
	KindThrowType:       "throw type",
	KindViewType:        "view type",
	KindExtractType:     "extract type",
	KindFunctionType:    "function type",
	KindInferType:       "inferred type",
	KindTuple:           "tuple",
	KindRef:             "reference",
	KindSelect:          "selector",
	KindNew:             "constructor call",
	KindObjectLiteral:   "object literal",
	KindWhen:            "when expression",
	KindTry:             "try expression",
	KindMatch:           "match expression",
	KindLambda:          "lambda",
	KindThrow:           "throw expression",
	KindLet:             "let binding",
	KindVar:             "var binding",
	KindParam:           "parameter",
	KindOftype:          "type ascription",
	KindAssign:          "assignment",
	KindInt:             "integer literal",
	KindFloat:           "float literal",
	KindHex:             "hex literal",
	KindBinary:          "binary literal",
	KindBool:            "bool literal",
	KindEscapedString:   "string literal",
	KindUnescapedString: "raw string literal",
	KindCharacter:       "character literal",
	KindField:           "field",
	KindFunction:        "function",
	KindTypeAlias:       "type alias",
	KindUsing:           "using",
	KindClass:           "class",
	KindInterface:       "interface",
	KindModule:          "module definition",
	KindTypeParam:       "type parameter",
	KindTypeParamList:   "type parameter list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// A Node is any node of the abstract syntax tree.
type Node interface {
	Kind() Kind
	Loc() loc.Loc
	// String returns a string representation suitable for debugging.
	String() string
	buildString(*strings.Builder) *strings.Builder
}

// A Type is a type-expression node.
type Type interface {
	Node
	typeNode()
}

// An Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// A Member is a type-body or top-level member node.
type Member interface {
	Node
	memberNode()
}

// A TypeParm is a type-parameter declaration: *TypeParam or *TypeParamList.
type TypeParm interface {
	Node
	typeParm()
}

// A TypeNamePart is one component of a TypeRef: *TypeName or *ModuleName.
type TypeNamePart interface {
	Node
	typeNamePart()
}

// Scoped is implemented by nodes that own a symbol table.
type Scoped interface {
	Node
	Symbols() *SymbolTable
}

// Types.

// A TypeRef is a dotted path of type names,
// optionally starting with a module name.
type TypeRef struct {
	Names []TypeNamePart
	L     loc.Loc
}

func (t *TypeRef) Kind() Kind   { return KindTypeRef }
func (t *TypeRef) Loc() loc.Loc { return t.L }

// A TypeName is a name with optional type arguments.
type TypeName struct {
	Name     string
	TypeArgs []Type
	L        loc.Loc
}

func (t *TypeName) Kind() Kind   { return KindTypeName }
func (t *TypeName) Loc() loc.Loc { return t.L }

// A ModuleName is a module-string component of a TypeRef.
// Its Name is rewritten to the synthetic $module-N form during parsing.
type ModuleName struct {
	TypeName
}

func (t *ModuleName) Kind() Kind { return KindModuleName }

// A TupleType is a parenthesized sequence of types.
// A one-element tuple type collapses to its element during parsing.
type TupleType struct {
	Types []Type
	L     loc.Loc
}

func (t *TupleType) Kind() Kind   { return KindTupleType }
func (t *TupleType) Loc() loc.Loc { return t.L }

// A TypeList names a type-parameter list: `T...` in type position.
type TypeList struct {
	Name string
	L    loc.Loc
}

func (t *TypeList) Kind() Kind   { return KindTypeList }
func (t *TypeList) Loc() loc.Loc { return t.L }

// Iso is the unique-reference capability.
type Iso struct {
	L loc.Loc
}

func (t *Iso) Kind() Kind   { return KindIso }
func (t *Iso) Loc() loc.Loc { return t.L }

// Mut is the mutable-shared capability.
type Mut struct {
	L loc.Loc
}

func (t *Mut) Kind() Kind   { return KindMut }
func (t *Mut) Loc() loc.Loc { return t.L }

// Imm is the immutable capability.
type Imm struct {
	L loc.Loc
}

func (t *Imm) Kind() Kind   { return KindImm }
func (t *Imm) Loc() loc.Loc { return t.L }

// Self is the self type.
type Self struct {
	L loc.Loc
}

func (t *Self) Kind() Kind   { return KindSelf }
func (t *Self) Loc() loc.Loc { return t.L }

// An IsectType is a flat intersection of types.
type IsectType struct {
	Types []Type
	L     loc.Loc
}

func (t *IsectType) Kind() Kind   { return KindIsectType }
func (t *IsectType) Loc() loc.Loc { return t.L }

// A UnionType is a flat union of types.
type UnionType struct {
	Types []Type
	L     loc.Loc
}

func (t *UnionType) Kind() Kind   { return KindUnionType }
func (t *UnionType) Loc() loc.Loc { return t.L }

// A ThrowType marks a type as thrown. After normalization it appears
// only at the root of a type expression or directly under a union.
type ThrowType struct {
	Type Type
	L    loc.Loc
}

func (t *ThrowType) Kind() Kind   { return KindThrowType }
func (t *ThrowType) Loc() loc.Loc { return t.L }

// A ViewType is `left ~> right`.
type ViewType struct {
	Left, Right Type
	L           loc.Loc
}

func (t *ViewType) Kind() Kind   { return KindViewType }
func (t *ViewType) Loc() loc.Loc { return t.L }

// An ExtractType is `left <~ right`.
type ExtractType struct {
	Left, Right Type
	L           loc.Loc
}

func (t *ExtractType) Kind() Kind   { return KindExtractType }
func (t *ExtractType) Loc() loc.Loc { return t.L }

// A FunctionType is `left -> right`, right associative.
type FunctionType struct {
	Left, Right Type
	L           loc.Loc
}

func (t *FunctionType) Kind() Kind   { return KindFunctionType }
func (t *FunctionType) Loc() loc.Loc { return t.L }

// An InferType stands for a type to be inferred later.
type InferType struct {
	L loc.Loc
}

func (t *InferType) Kind() Kind   { return KindInferType }
func (t *InferType) Loc() loc.Loc { return t.L }

// Expressions.

// A Tuple is a parenthesized sequence of expressions.
type Tuple struct {
	Seq []Expr
	L   loc.Loc
}

func (e *Tuple) Kind() Kind   { return KindTuple }
func (e *Tuple) Loc() loc.Loc { return e.L }

// A Ref is a use of a local binding: a parameter, let, or var.
type Ref struct {
	Name string
	L    loc.Loc
}

func (e *Ref) Kind() Kind   { return KindRef }
func (e *Ref) Loc() loc.Loc { return e.L }

// A Select applies a dotted name to a receiver expression.
// Args is nil until an argument tuple or adjacent operand is attached.
type Select struct {
	Expr    Expr
	TypeRef *TypeRef
	Args    Expr
	L       loc.Loc
}

func (e *Select) Kind() Kind   { return KindSelect }
func (e *Select) Loc() loc.Loc { return e.L }

// A New is a constructor call. In names the region to allocate in.
type New struct {
	In   string
	Args Expr
	L    loc.Loc
}

func (e *New) Kind() Kind   { return KindNew }
func (e *New) Loc() loc.Loc { return e.L }

// An ObjectLiteral is an anonymous object body with optional inheritance.
type ObjectLiteral struct {
	In       string
	Inherits Type
	Members  []Member
	st       SymbolTable
	L        loc.Loc
}

func (e *ObjectLiteral) Kind() Kind            { return KindObjectLiteral }
func (e *ObjectLiteral) Loc() loc.Loc          { return e.L }
func (e *ObjectLiteral) Symbols() *SymbolTable { return &e.st }

// A When schedules a behaviour on a condition.
type When struct {
	WaitFor   Expr
	Behaviour Expr
	L         loc.Loc
}

func (e *When) Kind() Kind   { return KindWhen }
func (e *When) Loc() loc.Loc { return e.L }

// A Try runs a body with catch clauses.
type Try struct {
	Body    Expr
	Catches []Expr
	L       loc.Loc
}

func (e *Try) Kind() Kind   { return KindTry }
func (e *Try) Loc() loc.Loc { return e.L }

// A Match tests an expression against case lambdas.
type Match struct {
	Test  Expr
	Cases []Expr
	L     loc.Loc
}

func (e *Match) Kind() Kind   { return KindMatch }
func (e *Match) Loc() loc.Loc { return e.L }

// A Lambda is a brace-delimited function body with optional parameters.
// Function bodies and initializer expressions are lambdas too.
type Lambda struct {
	TypeParms []TypeParm
	Params    []Expr
	Result    Type
	Body      []Expr
	st        SymbolTable
	L         loc.Loc
}

func (e *Lambda) Kind() Kind            { return KindLambda }
func (e *Lambda) Loc() loc.Loc          { return e.L }
func (e *Lambda) Symbols() *SymbolTable { return &e.st }

// A Throw raises its expression.
type Throw struct {
	Expr Expr
	L    loc.Loc
}

func (e *Throw) Kind() Kind   { return KindThrow }
func (e *Throw) Loc() loc.Loc { return e.L }

// A Let introduces an immutable binding.
type Let struct {
	Name string
	Type Type
	L    loc.Loc
}

func (e *Let) Kind() Kind   { return KindLet }
func (e *Let) Loc() loc.Loc { return e.L }

// A Var introduces a mutable binding.
type Var struct {
	Name string
	Type Type
	L    loc.Loc
}

func (e *Var) Kind() Kind   { return KindVar }
func (e *Var) Loc() loc.Loc { return e.L }

// A Param is a lambda or function parameter.
// Default, if any, is an initializer encoded as a zero-parameter lambda.
type Param struct {
	Name    string
	Type    Type
	Default Expr
	L       loc.Loc
}

func (e *Param) Kind() Kind   { return KindParam }
func (e *Param) Loc() loc.Loc { return e.L }

// An Oftype ascribes a type to an expression.
type Oftype struct {
	Expr Expr
	Type Type
	L    loc.Loc
}

func (e *Oftype) Kind() Kind   { return KindOftype }
func (e *Oftype) Loc() loc.Loc { return e.L }

// An Assign is `left = right`.
type Assign struct {
	Left, Right Expr
	L           loc.Loc
}

func (e *Assign) Kind() Kind   { return KindAssign }
func (e *Assign) Loc() loc.Loc { return e.L }

// Literals carry no decoded value; their text is their location's text.

// An Int is a decimal integer literal.
type Int struct {
	L loc.Loc
}

func (e *Int) Kind() Kind   { return KindInt }
func (e *Int) Loc() loc.Loc { return e.L }

// A Float is a float literal.
type Float struct {
	L loc.Loc
}

func (e *Float) Kind() Kind   { return KindFloat }
func (e *Float) Loc() loc.Loc { return e.L }

// A Hex is a hexadecimal integer literal.
type Hex struct {
	L loc.Loc
}

func (e *Hex) Kind() Kind   { return KindHex }
func (e *Hex) Loc() loc.Loc { return e.L }

// A Binary is a binary integer literal.
type Binary struct {
	L loc.Loc
}

func (e *Binary) Kind() Kind   { return KindBinary }
func (e *Binary) Loc() loc.Loc { return e.L }

// A Bool is `true` or `false`.
type Bool struct {
	L loc.Loc
}

func (e *Bool) Kind() Kind   { return KindBool }
func (e *Bool) Loc() loc.Loc { return e.L }

// An EscapedString is a double-quoted string literal.
type EscapedString struct {
	L loc.Loc
}

func (e *EscapedString) Kind() Kind   { return KindEscapedString }
func (e *EscapedString) Loc() loc.Loc { return e.L }

// An UnescapedString is a backquoted string literal.
type UnescapedString struct {
	L loc.Loc
}

func (e *UnescapedString) Kind() Kind   { return KindUnescapedString }
func (e *UnescapedString) Loc() loc.Loc { return e.L }

// A Character is a character literal.
type Character struct {
	L loc.Loc
}

func (e *Character) Kind() Kind   { return KindCharacter }
func (e *Character) Loc() loc.Loc { return e.L }

// Members.

// A Field is a named member with optional type and initializer.
type Field struct {
	Name string
	Type Type
	Init Expr
	L    loc.Loc
}

func (m *Field) Kind() Kind   { return KindField }
func (m *Field) Loc() loc.Loc { return m.L }

// A Function is a named member whose body and signature live in Lambda.
type Function struct {
	Name   string
	Lambda *Lambda
	L      loc.Loc
}

func (m *Function) Kind() Kind   { return KindFunction }
func (m *Function) Loc() loc.Loc { return m.L }

// A TypeAlias binds a name to a type expression.
type TypeAlias struct {
	Name      string
	TypeParms []TypeParm
	Inherits  Type
	st        SymbolTable
	L         loc.Loc
}

func (m *TypeAlias) Kind() Kind            { return KindTypeAlias }
func (m *TypeAlias) Loc() loc.Loc          { return m.L }
func (m *TypeAlias) Symbols() *SymbolTable { return &m.st }

// A Using imports a type reference's members into the current scope.
type Using struct {
	Type Type
	L    loc.Loc
}

func (m *Using) Kind() Kind   { return KindUsing }
func (m *Using) Loc() loc.Loc { return m.L }

// entityDef is the common shape of classes and interfaces.
// The program root and each loaded module are Class nodes too.
type entityDef struct {
	Name      string
	TypeParms []TypeParm
	Inherits  Type
	Members   []Member
	st        SymbolTable
	L         loc.Loc
}

func (m *entityDef) Loc() loc.Loc          { return m.L }
func (m *entityDef) Symbols() *SymbolTable { return &m.st }

// A Class is a concrete entity definition.
type Class struct {
	entityDef
}

func (m *Class) Kind() Kind { return KindClass }

// An Interface is an abstract entity definition.
type Interface struct {
	entityDef
}

func (m *Interface) Kind() Kind { return KindInterface }

// A Module is a `module` declaration. At most one may appear per
// module; its type parameters and inheritance clause are moved onto
// the module's Class node after all files are parsed.
type Module struct {
	TypeParms []TypeParm
	Inherits  Type
	L         loc.Loc
}

func (m *Module) Kind() Kind   { return KindModule }
func (m *Module) Loc() loc.Loc { return m.L }

// Type parameters.

// A TypeParam is a single type parameter with optional bound and default.
type TypeParam struct {
	Name  string
	Upper Type
	Dflt  Type
	L     loc.Loc
}

func (t *TypeParam) Kind() Kind   { return KindTypeParam }
func (t *TypeParam) Loc() loc.Loc { return t.L }

// A TypeParamList is a variadic type parameter: `T...`.
type TypeParamList struct {
	TypeParam
}

func (t *TypeParamList) Kind() Kind { return KindTypeParamList }

// Interface conformance markers.

func (*TypeRef) typeNode()      {}
func (*TypeName) typeNode()     {}
func (*TupleType) typeNode()    {}
func (*TypeList) typeNode()     {}
func (*Iso) typeNode()          {}
func (*Mut) typeNode()          {}
func (*Imm) typeNode()          {}
func (*Self) typeNode()         {}
func (*IsectType) typeNode()    {}
func (*UnionType) typeNode()    {}
func (*ThrowType) typeNode()    {}
func (*ViewType) typeNode()     {}
func (*ExtractType) typeNode()  {}
func (*FunctionType) typeNode() {}
func (*InferType) typeNode()    {}

func (*Tuple) exprNode()           {}
func (*Ref) exprNode()             {}
func (*Select) exprNode()          {}
func (*New) exprNode()             {}
func (*ObjectLiteral) exprNode()   {}
func (*When) exprNode()            {}
func (*Try) exprNode()             {}
func (*Match) exprNode()           {}
func (*Lambda) exprNode()          {}
func (*Throw) exprNode()           {}
func (*Let) exprNode()             {}
func (*Var) exprNode()             {}
func (*Param) exprNode()           {}
func (*Oftype) exprNode()          {}
func (*Assign) exprNode()          {}
func (*Int) exprNode()             {}
func (*Float) exprNode()           {}
func (*Hex) exprNode()             {}
func (*Binary) exprNode()          {}
func (*Bool) exprNode()            {}
func (*EscapedString) exprNode()   {}
func (*UnescapedString) exprNode() {}
func (*Character) exprNode()       {}

func (*Field) memberNode()     {}
func (*Function) memberNode()  {}
func (*TypeAlias) memberNode() {}
func (*Using) memberNode()     {}
func (*Class) memberNode()     {}
func (*Interface) memberNode() {}
func (*Module) memberNode()    {}

func (*TypeParam) typeParm() {}

func (*TypeName) typeNamePart() {}
