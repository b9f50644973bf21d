package lexer

import "github.com/tarn-lang/tarn/loc"

// A Kind classifies a token.
type Kind int

const (
	End Kind = iota
	Invalid

	Ident
	Symbol

	EscapedString
	UnescapedString
	Character
	Int
	Float
	Hex
	Binary
	Bool

	LParen
	RParen
	LSquare
	RSquare
	LBrace
	RBrace
	Comma
	Dot
	Colon
	DoubleColon
	Semicolon
	Equals
	FatArrow
	Ellipsis

	When
	Try
	Catch
	Match
	New
	Throw
	Let
	Var
	Using
	Type
	Class
	Interface
	Module
	Iso
	Mut
	Imm
	Self
)

var kindNames = [...]string{
	End:             "end of file",
	Invalid:         "invalid token",
	Ident:           "identifier",
	Symbol:          "symbol",
	EscapedString:   "string",
	UnescapedString: "raw string",
	Character:       "character",
	Int:             "integer",
	Float:           "float",
	Hex:             "hex integer",
	Binary:          "binary integer",
	Bool:            "bool",
	LParen:          "(",
	RParen:          ")",
	LSquare:         "[",
	RSquare:         "]",
	LBrace:          "{",
	RBrace:          "}",
	Comma:           ",",
	Dot:             ".",
	Colon:           ":",
	DoubleColon:     "::",
	Semicolon:       ";",
	Equals:          "=",
	FatArrow:        "=>",
	Ellipsis:        "...",
	When:            "when",
	Try:             "try",
	Catch:           "catch",
	Match:           "match",
	New:             "new",
	Throw:           "throw",
	Let:             "let",
	Var:             "var",
	Using:           "using",
	Type:            "type",
	Class:           "class",
	Interface:       "interface",
	Module:          "module",
	Iso:             "iso",
	Mut:             "mut",
	Imm:             "imm",
	Self:            "Self",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown token"
}

var keywords = map[string]Kind{
	"when":      When,
	"try":       Try,
	"catch":     Catch,
	"match":     Match,
	"new":       New,
	"throw":     Throw,
	"let":       Let,
	"var":       Var,
	"using":     Using,
	"type":      Type,
	"class":     Class,
	"interface": Interface,
	"module":    Module,
	"iso":       Iso,
	"mut":       Mut,
	"imm":       Imm,
	"Self":      Self,
	"true":      Bool,
	"false":     Bool,
}

// lookupIdent maps an identifier's text to its keyword kind, if any.
func lookupIdent(text string) Kind {
	if k, ok := keywords[text]; ok {
		return k
	}
	return Ident
}

// A Token is a lexed token. Its text is its location's text.
type Token struct {
	Kind Kind
	Loc  loc.Loc
}

// Text returns the source text of the token.
func (t Token) Text() string { return t.Loc.Text() }
