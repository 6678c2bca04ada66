package types

import "fmt"

// UnifyError reports that two types could not be made equal.
type UnifyError struct {
	Left, Right Type
	Reason      string
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
}

func mismatch(t1, t2 Type, reason string) error {
	return &UnifyError{Left: t1, Right: t2, Reason: reason}
}

// Unify is the default "external unifier" collaborator named in spec §6
// (unify(Type, Type) -> () under the shared substitution). The solver
// itself never inlines unification logic — every commit step in
// internal/solver calls this, exactly as spec §6 specifies the
// dependency runs one way.
//
// It enforces strict structural equality except: a TUnknown unifies
// with anything (occurs-checked); a Skolem unifies only with the exact
// same Skolem or another TUnknown; rows unify via AlignRows, with a
// trailing TUnknown on either side absorbing the other side's
// unmatched fields (a trailing TVar, like any TVar, only unifies with
// itself).
func Unify(t1, t2 Type) (Subst, error) {
	return unify(StripKinded(t1), StripKinded(t2))
}

func unify(t1, t2 Type) (Subst, error) {
	if u1, ok := t1.(TUnknown); ok {
		return bind(u1, t2)
	}
	if u2, ok := t2.(TUnknown); ok {
		return bind(u2, t1)
	}

	switch a := t1.(type) {
	case TVar:
		if b, ok := t2.(TVar); ok && b.Name == a.Name {
			return Subst{}, nil
		}
		return nil, mismatch(t1, t2, "bare type variables only unify with themselves")

	case Skolem:
		if b, ok := t2.(Skolem); ok && b.ID == a.ID {
			return Subst{}, nil
		}
		return nil, mismatch(t1, t2, "skolem constants are rigid")

	case TCon:
		b, ok := t2.(TCon)
		if !ok || b.Name != a.Name {
			return nil, mismatch(t1, t2, "type constructor mismatch")
		}
		return Subst{}, nil

	case TypeLevelString:
		b, ok := t2.(TypeLevelString)
		if !ok || b.Value != a.Value {
			return nil, mismatch(t1, t2, "symbol literal mismatch")
		}
		return Subst{}, nil

	case TApp:
		b, ok := t2.(TApp)
		if !ok {
			return nil, mismatch(t1, t2, "application expected")
		}
		if len(a.Args) != len(b.Args) {
			return nil, mismatch(t1, t2, "arity mismatch")
		}
		s, err := unify(a.Constructor, b.Constructor)
		if err != nil {
			return nil, err
		}
		for i := range a.Args {
			s2, err := unify(a.Args[i].Apply(s), b.Args[i].Apply(s))
			if err != nil {
				return nil, err
			}
			s = s.Compose(s2)
		}
		return s, nil

	case REmpty:
		if _, ok := t2.(REmpty); ok {
			return Subst{}, nil
		}
		return unifyRow(a, t2)

	case RCons:
		return unifyRow(a, t2)

	case TRecord:
		b, ok := t2.(TRecord)
		if !ok {
			return nil, mismatch(t1, t2, "record expected")
		}
		return unify(a.Row, b.Row)

	case TForall:
		b, ok := t2.(TForall)
		if !ok || len(a.Vars) != len(b.Vars) {
			return nil, mismatch(t1, t2, "quantifier mismatch")
		}
		return unify(a.Type, b.Type)

	default:
		return nil, mismatch(t1, t2, fmt.Sprintf("unknown type shape %T", t1))
	}
}

// unifyRow unifies two row chains (at least one of which is
// REmpty/RCons) via alignment: common labels recurse, leftover fields on
// one side are only permitted if the other side's tail is a variable
// (which then absorbs them), and REmpty never absorbs leftover fields.
func unifyRow(t1, t2 Type) (Subst, error) {
	al := AlignRows(t1, t2)

	s := Subst{}
	for _, c := range al.Common {
		s2, err := unify(c.Left.Apply(s), c.Right.Apply(s))
		if err != nil {
			return nil, err
		}
		s = s.Compose(s2)
	}

	leftExtra := len(al.LeftOnly) > 0
	rightExtra := len(al.RightOnly) > 0

	switch {
	case !leftExtra && !rightExtra:
		s2, err := unify(al.LeftTail.Apply(s), al.RightTail.Apply(s))
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil
	case leftExtra && !rightExtra:
		// right's tail must be a variable that absorbs the left extras
		s2, err := unify(al.RightTail.Apply(s), al.LeftOnlyRow(al.LeftTail).Apply(s))
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil
	case rightExtra && !leftExtra:
		s2, err := unify(al.LeftTail.Apply(s), al.RightOnlyRow(al.RightTail).Apply(s))
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil
	default:
		return nil, mismatch(t1, t2, "rows disagree on both sides and neither tail is a variable")
	}
}

func bind(u TUnknown, t Type) (Subst, error) {
	if other, ok := t.(TUnknown); ok && other.ID == u.ID {
		return Subst{}, nil
	}
	if occurs(u.ID, t) {
		return nil, mismatch(u, t, "infinite type")
	}
	return Subst{u.ID: t}, nil
}

func occurs(id int64, t Type) bool {
	switch v := t.(type) {
	case TUnknown:
		return v.ID == id
	case TApp:
		if occurs(id, v.Constructor) {
			return true
		}
		for _, a := range v.Args {
			if occurs(id, a) {
				return true
			}
		}
		return false
	case RCons:
		return occurs(id, v.Head) || occurs(id, v.Tail)
	case TRecord:
		return occurs(id, v.Row)
	case KindedType:
		return occurs(id, v.Type)
	case TForall:
		return occurs(id, v.Type)
	default:
		return false
	}
}
