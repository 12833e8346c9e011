// Package optimize implements the three IR→IR passes of spec.md §4.5:
// return-lifting (to expose tail calls in both branch arms), free-local
// insertion (lifetime-end marking), and load/store folding (temp
// elimination). They run in that fixed order and operate directly on the
// named-local lang/ir representation, before the bytecode emitter assigns
// numeric slots.
//
// This reflects spec.md's own placement of the pass (over named-local Ir,
// pre-emission) rather than the original Rust implementation it was
// distilled from, whose load_store_optimizer.rs instead runs after
// emission over numbered-local Instructions — the spec's text is
// authoritative here, not the original.
package optimize

import "github.com/DillonJettCallis/letlang/lang/ir"

// Function runs all three passes over fn.Body, in order, and returns fn
// with its Body replaced. fn itself is not mutated in place so that callers
// holding the pre-optimization IrModule are unaffected.
func Function(fn *ir.Function) *ir.Function {
	body := liftReturn(fn.Body)
	body, _ = freeLocal(body, map[string]bool{})
	body = loadStoreFold(body)
	return &ir.Function{Ref: fn.Ref, Locals: fn.Locals, Body: body}
}

// Module runs Function over every function of mod.
func Module(mod *ir.Module) *ir.Module {
	out := &ir.Module{Package: mod.Package, Module: mod.Module}
	for _, fn := range mod.Functions {
		out.Functions = append(out.Functions, Function(fn))
	}
	return out
}

// liftReturn pushes a Return that immediately follows a Branch into both of
// the branch's arms, recursively, removing the outer Return. Applying it to
// an already-lifted body is a no-op: there is never again a Branch directly
// followed by a Return at any nesting level.
func liftReturn(body []ir.Op) []ir.Op {
	out := make([]ir.Op, 0, len(body))
	for i := 0; i < len(body); i++ {
		br, isBranch := body[i].(ir.Branch)
		if !isBranch {
			out = append(out, body[i])
			continue
		}

		if i+1 < len(body) {
			if _, isReturn := body[i+1].(ir.Return); isReturn {
				thenWithReturn := append(append([]ir.Op{}, br.Then...), ir.Return{})
				elseWithReturn := append(append([]ir.Op{}, br.Else...), ir.Return{})
				out = append(out, ir.Branch{
					Then: liftReturn(thenWithReturn),
					Else: liftReturn(elseWithReturn),
				})
				i++ // also consumes the Return at i+1
				continue
			}
		}

		out = append(out, ir.Branch{Then: liftReturn(br.Then), Else: liftReturn(br.Else)})
	}
	return out
}

// freeLocal walks body in reverse, inserting a FreeLocal(x) right after the
// last (in forward order, first in this reverse walk) use of each local. A
// local already immediately followed by a FreeLocal marker — whether from a
// prior run of this same pass, or because this function recurses into a
// branch arm that already carries one — is treated as already known, which
// is what makes a second application of the pass a no-op.
func freeLocal(body []ir.Op, known map[string]bool) ([]ir.Op, map[string]bool) {
	cur := cloneSet(known)
	rev := make([]ir.Op, 0, len(body))

	for i := len(body) - 1; i >= 0; i-- {
		switch o := body[i].(type) {
		case ir.Branch:
			thenOut, thenKnown := freeLocal(o.Then, cloneSet(cur))
			elseOut, elseKnown := freeLocal(o.Else, cloneSet(cur))
			rev = append(rev, ir.Branch{Then: thenOut, Else: elseOut})
			cur = unionSet(thenKnown, elseKnown)

		case ir.FreeLocal:
			cur[o.Name] = true
			rev = append(rev, o)

		case ir.LoadValue:
			if !cur[o.Name] {
				cur[o.Name] = true
				rev = append(rev, ir.FreeLocal{Name: o.Name})
			}
			rev = append(rev, o)

		default:
			rev = append(rev, o)
		}
	}

	out := make([]ir.Op, len(rev))
	for i, op := range rev {
		out[len(rev)-1-i] = op
	}
	return out, cur
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func unionSet(a, b map[string]bool) map[string]bool {
	out := cloneSet(a)
	for k, v := range b {
		if v {
			out[k] = true
		}
	}
	return out
}

// loadStoreFold scans forward, recursing into branch arms. Two patterns:
//
//	StoreValue(x); LoadValue(x); FreeLocal(x)   -> delete all three
//	StoreValue(x); LoadValue(x); <anything else> -> Duplicate; StoreValue(x)
//
// both eliminating a round-trip through a local that was only ever used to
// carry a value from its producer to its very next consumer.
func loadStoreFold(body []ir.Op) []ir.Op {
	out := make([]ir.Op, 0, len(body))
	for i := 0; i < len(body); i++ {
		if br, ok := body[i].(ir.Branch); ok {
			out = append(out, ir.Branch{Then: loadStoreFold(br.Then), Else: loadStoreFold(br.Else)})
			continue
		}

		sv, isStore := body[i].(ir.StoreValue)
		if isStore && i+1 < len(body) {
			if lv, ok := body[i+1].(ir.LoadValue); ok && lv.Name == sv.Name {
				if i+2 < len(body) {
					if fl, ok := body[i+2].(ir.FreeLocal); ok && fl.Name == sv.Name {
						i += 2 // plus the loop's own i++ skips all three
						continue
					}
				}
				out = append(out, ir.Duplicate{}, ir.StoreValue{Name: sv.Name})
				i++ // plus the loop's own i++ skips both Store and Load
				continue
			}
		}

		out = append(out, body[i])
	}
	return out
}
