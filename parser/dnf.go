package parser

// Disjunctive normal form construction for type expressions.
//
// The normal form is a union whose operands are intersections or atomic
// types, each optionally wrapped in a single throw marker. Unions and
// intersections are flat, throw never appears under an intersection,
// and a throw's operand is never a union.

// conjunction intersects two normalized types, keeping the result in
// normal form. Intersection distributes over union, and a throw marker
// absorbs the intersection into its operand.
func conjunction(a, b Type) Type {
	if u, ok := a.(*UnionType); ok {
		r := &UnionType{L: a.Loc().Range(b.Loc())}
		for _, t := range u.Types {
			appendUnion(r, conjunction(t, b))
		}
		return r
	}
	if u, ok := b.(*UnionType); ok {
		r := &UnionType{L: a.Loc().Range(b.Loc())}
		for _, t := range u.Types {
			appendUnion(r, conjunction(a, t))
		}
		return r
	}
	if ta, ok := a.(*ThrowType); ok {
		if tb, ok := b.(*ThrowType); ok {
			return &ThrowType{Type: conjunction(ta.Type, tb.Type), L: a.Loc().Range(b.Loc())}
		}
		return &ThrowType{Type: conjunction(ta.Type, b), L: a.Loc().Range(b.Loc())}
	}
	if tb, ok := b.(*ThrowType); ok {
		return &ThrowType{Type: conjunction(a, tb.Type), L: a.Loc().Range(b.Loc())}
	}
	r := &IsectType{L: a.Loc().Range(b.Loc())}
	appendIsect(r, a)
	appendIsect(r, b)
	return r
}

// disjunction unions two normalized types into a single flat union.
func disjunction(a, b Type) Type {
	r := &UnionType{L: a.Loc().Range(b.Loc())}
	appendUnion(r, a)
	appendUnion(r, b)
	return r
}

// throwType wraps a normalized type in a throw marker, distributing
// over union operands and leaving existing throws unchanged.
func throwType(t Type) Type {
	switch t := t.(type) {
	case *UnionType:
		r := &UnionType{L: t.L}
		for _, op := range t.Types {
			appendUnion(r, throwType(op))
		}
		return r
	case *ThrowType:
		return t
	default:
		return &ThrowType{Type: t, L: t.Loc()}
	}
}

func appendUnion(u *UnionType, t Type) {
	if u2, ok := t.(*UnionType); ok {
		u.Types = append(u.Types, u2.Types...)
		return
	}
	u.Types = append(u.Types, t)
}

func appendIsect(is *IsectType, t Type) {
	if is2, ok := t.(*IsectType); ok {
		is.Types = append(is.Types, is2.Types...)
		return
	}
	is.Types = append(is.Types, t)
}
