package types

import (
	"github.com/hashicorp/go-set/v3"
)

// Generalize returns the variables of t which can be universally quantified,
// which are those not free in the environment the binding of t lives in
func Generalize(t Type, envFree *set.Set[VarID]) []VarID {
	var quantified []VarID
	for _, v := range FreeVariables(t) {
		if envFree != nil && envFree.Contains(v.ID) {
			continue
		}
		quantified = append(quantified, v.ID)
	}
	return quantified
}

// Instantiate replaces the quantified variables of t with fresh ones,
// so that every use of a polymorphic binding is typed independently
func Instantiate(t Type, quantified []VarID, fresher *Fresher) Type {
	if len(quantified) == 0 {
		return t
	}
	hints := make(map[VarID]string, len(quantified))
	for _, v := range FreeVariables(t) {
		hints[v.ID] = v.NameHint
	}
	subs := make(map[VarID]Type, len(quantified))
	for _, id := range quantified {
		subs[id] = fresher.Fresh(hints[id])
	}
	return Substitute(t, subs)
}
