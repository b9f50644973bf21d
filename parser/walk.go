package parser

// Walk calls f on n and then, if f returns true, on each of n's
// children in syntactic order. Nil children are skipped.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *TypeRef:
		for _, name := range n.Names {
			Walk(name, f)
		}
	case *TypeName:
		for _, arg := range n.TypeArgs {
			walkType(arg, f)
		}
	case *ModuleName:
		for _, arg := range n.TypeArgs {
			walkType(arg, f)
		}
	case *TupleType:
		for _, t := range n.Types {
			walkType(t, f)
		}
	case *IsectType:
		for _, t := range n.Types {
			walkType(t, f)
		}
	case *UnionType:
		for _, t := range n.Types {
			walkType(t, f)
		}
	case *ThrowType:
		walkType(n.Type, f)
	case *ViewType:
		walkType(n.Left, f)
		walkType(n.Right, f)
	case *ExtractType:
		walkType(n.Left, f)
		walkType(n.Right, f)
	case *FunctionType:
		walkType(n.Left, f)
		walkType(n.Right, f)

	case *Tuple:
		for _, e := range n.Seq {
			walkExpr(e, f)
		}
	case *Select:
		walkExpr(n.Expr, f)
		if n.TypeRef != nil {
			Walk(n.TypeRef, f)
		}
		walkExpr(n.Args, f)
	case *New:
		walkExpr(n.Args, f)
	case *ObjectLiteral:
		walkType(n.Inherits, f)
		for _, m := range n.Members {
			Walk(m, f)
		}
	case *When:
		walkExpr(n.WaitFor, f)
		walkExpr(n.Behaviour, f)
	case *Try:
		walkExpr(n.Body, f)
		for _, c := range n.Catches {
			walkExpr(c, f)
		}
	case *Match:
		walkExpr(n.Test, f)
		for _, c := range n.Cases {
			walkExpr(c, f)
		}
	case *Lambda:
		for _, tp := range n.TypeParms {
			Walk(tp, f)
		}
		for _, p := range n.Params {
			walkExpr(p, f)
		}
		walkType(n.Result, f)
		for _, e := range n.Body {
			walkExpr(e, f)
		}
	case *Throw:
		walkExpr(n.Expr, f)
	case *Let:
		walkType(n.Type, f)
	case *Var:
		walkType(n.Type, f)
	case *Param:
		walkType(n.Type, f)
		walkExpr(n.Default, f)
	case *Oftype:
		walkExpr(n.Expr, f)
		walkType(n.Type, f)
	case *Assign:
		walkExpr(n.Left, f)
		walkExpr(n.Right, f)

	case *Field:
		walkType(n.Type, f)
		walkExpr(n.Init, f)
	case *Function:
		if n.Lambda != nil {
			Walk(n.Lambda, f)
		}
	case *TypeAlias:
		for _, tp := range n.TypeParms {
			Walk(tp, f)
		}
		walkType(n.Inherits, f)
	case *Using:
		walkType(n.Type, f)
	case *Class:
		walkEntity(&n.entityDef, f)
	case *Interface:
		walkEntity(&n.entityDef, f)
	case *Module:
		for _, tp := range n.TypeParms {
			Walk(tp, f)
		}
		walkType(n.Inherits, f)

	case *TypeParam:
		walkType(n.Upper, f)
		walkType(n.Dflt, f)
	case *TypeParamList:
		walkType(n.Upper, f)
		walkType(n.Dflt, f)
	}
}

func walkEntity(ent *entityDef, f func(Node) bool) {
	for _, tp := range ent.TypeParms {
		Walk(tp, f)
	}
	walkType(ent.Inherits, f)
	for _, m := range ent.Members {
		Walk(m, f)
	}
}

func walkType(t Type, f func(Node) bool) {
	if t != nil {
		Walk(t, f)
	}
}

func walkExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Walk(e, f)
	}
}
