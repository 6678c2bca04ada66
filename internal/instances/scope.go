package instances

import "github.com/funvibe/entailer/internal/types"

// ScopeModules recovers the set of modules owning any constructor
// occurring in the wanted arguments — found by walking TypeConstructor
// heads through TypeApp and KindedType — together with the current
// module (spec §4.B).
func ScopeModules(wantedTypes []types.Type, currentModule string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(m string) {
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		out = append(out, m)
	}
	add(currentModule)
	for _, t := range wantedTypes {
		walkConstructorModules(t, add)
	}
	return out
}

func walkConstructorModules(t types.Type, add func(string)) {
	switch v := t.(type) {
	case types.KindedType:
		walkConstructorModules(v.Type, add)
	case types.TApp:
		walkConstructorModules(v.Constructor, add)
		for _, a := range v.Args {
			walkConstructorModules(a, add)
		}
	case types.TCon:
		add(v.Module)
	}
}
