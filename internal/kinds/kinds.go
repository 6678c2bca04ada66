// Package kinds implements the "type of a type" lattice used to check
// that instance heads and built-in class arguments are applied at the
// arity the class declares (spec §4.C step "per-position head
// comparison" implicitly assumes well-kinded arguments; role inference,
// §4.A, needs to know a constructor's arity to walk its fields).
package kinds

import "fmt"

// Kind is either Star (a proper, concrete type) or an arrow from one
// kind to another (a type constructor).
type Kind interface {
	String() string
	Equal(Kind) bool
}

// KStar is the kind of proper types (Int, List Int, Coercible's arguments).
type KStar struct{}

func (k KStar) String() string { return "*" }
func (k KStar) Equal(other Kind) bool {
	_, ok := other.(KStar)
	return ok
}

// KArrow is the kind of a type constructor awaiting one more argument.
type KArrow struct {
	Left  Kind
	Right Kind
}

func (k KArrow) String() string {
	return fmt.Sprintf("(%s -> %s)", k.Left.String(), k.Right.String())
}

func (k KArrow) Equal(other Kind) bool {
	o, ok := other.(KArrow)
	if !ok {
		return false
	}
	return k.Left.Equal(o.Left) && k.Right.Equal(o.Right)
}

// Star is the shared KStar value.
var Star Kind = KStar{}

// MakeArrow builds an n-ary arrow kind left-to-right, e.g.
// MakeArrow(Star, Star, Star) is (* -> (* -> *)), the kind of a
// two-parameter type constructor such as Map or Result.
func MakeArrow(args ...Kind) Kind {
	if len(args) == 0 {
		return Star
	}
	if len(args) == 1 {
		return args[0]
	}
	return KArrow{Left: args[0], Right: MakeArrow(args[1:]...)}
}

// Arity returns how many more arguments must be applied to k to reach
// Star — 0 for Star itself, 1 for (* -> *), and so on.
func Arity(k Kind) int {
	n := 0
	for {
		arrow, ok := k.(KArrow)
		if !ok {
			return n
		}
		n++
		k = arrow.Right
	}
}
