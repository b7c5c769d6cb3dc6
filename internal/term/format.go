package term

import (
	"strconv"
	"strings"

	"frkernel/internal/source"
)

// Format renders t for diagnostics. Bound variables get positional names
// (x0 for the outermost binder, x1 for the next, ...); locals use their
// context name when ctx knows them.
func Format(a *Arena, ctx *Context, t ID) string {
	f := formatter{arena: a, ctx: ctx}
	var sb strings.Builder
	f.write(&sb, t, 0, precLow)
	return sb.String()
}

const (
	precLow = iota // binders and arrows
	precApp        // function position of an application
	precAtom       // argument position
)

type formatter struct {
	arena *Arena
	ctx   *Context
}

func (f *formatter) name(id source.StringID) string {
	if s, ok := f.arena.names.Lookup(id); ok && s != "" {
		return s
	}
	return "?"
}

func (f *formatter) write(sb *strings.Builder, t ID, depth int, prec int) {
	n, ok := f.arena.Lookup(t)
	if !ok {
		sb.WriteString("?")
		return
	}
	switch n.Kind {
	case KindVar:
		if int(n.Index) < depth {
			sb.WriteString("x" + strconv.Itoa(depth-1-int(n.Index)))
		} else {
			sb.WriteString("^" + strconv.Itoa(int(n.Index)-depth))
		}
	case KindLocal:
		if l, ok := f.ctx.Lookup(t); ok && l.Name != "" && l.Name != "_" {
			sb.WriteString(l.Name)
		} else {
			sb.WriteString("#" + strconv.FormatUint(uint64(n.Index), 10))
		}
	case KindSort:
		u := n.Universe()
		if prec == precAtom && !u.IsProp() && u != Set {
			sb.WriteString("(" + u.String() + ")")
		} else {
			sb.WriteString(u.String())
		}
	case KindConst, KindInd, KindCtor:
		sb.WriteString(f.name(n.Name))
	case KindElim:
		sb.WriteString(f.name(n.Name) + "::rec[" + n.Universe().String() + "]")
	case KindNat:
		sb.WriteString(strconv.FormatUint(uint64(n.Index), 10))
	case KindPi:
		if prec > precLow {
			sb.WriteString("(")
		}
		if !f.arena.HasVar(n.B, 0) {
			f.write(sb, n.A, depth, precApp)
			sb.WriteString(" -> ")
		} else {
			sb.WriteString("Fn(x" + strconv.Itoa(depth) + ": ")
			f.write(sb, n.A, depth, precLow)
			sb.WriteString(") -> ")
		}
		f.write(sb, n.B, depth+1, precLow)
		if prec > precLow {
			sb.WriteString(")")
		}
	case KindLam:
		if prec > precLow {
			sb.WriteString("(")
		}
		sb.WriteString("fn(x" + strconv.Itoa(depth) + ": ")
		f.write(sb, n.A, depth, precLow)
		sb.WriteString(") => ")
		f.write(sb, n.B, depth+1, precLow)
		if prec > precLow {
			sb.WriteString(")")
		}
	case KindApp:
		if prec == precAtom {
			sb.WriteString("(")
		}
		f.write(sb, n.A, depth, precApp)
		sb.WriteString(" ")
		f.write(sb, n.B, depth, precAtom)
		if prec == precAtom {
			sb.WriteString(")")
		}
	default:
		sb.WriteString("?")
	}
}

// HasVar reports whether the loose bound variable k occurs in t.
func (a *Arena) HasVar(t ID, k uint32) bool {
	var walk func(id ID, depth uint32) bool
	walk = func(id ID, depth uint32) bool {
		if a.Loose(id) <= k+depth {
			return false
		}
		n := a.Node(id)
		switch n.Kind {
		case KindVar:
			return n.Index == k+depth
		case KindPi, KindLam:
			return walk(n.A, depth) || walk(n.B, depth+1)
		case KindApp:
			return walk(n.A, depth) || walk(n.B, depth)
		}
		return false
	}
	return walk(t, 0)
}
