package mapcss

import (
	"fmt"
	"math"
	"strings"
)

type Expression interface {
	Eval(t Target) Value
	String() string
}

type Literal struct {
	Value Value
}

// Operation applies Op to its arguments. Arguments are always evaluated, left to right,
// before the operator is applied.
type Operation struct {
	Op   string
	Args []Expression
}

func (l *Literal) Eval(t Target) Value {
	return l.Value
}

func (o *Operation) Eval(t Target) Value {
	args := make([]Value, len(o.Args))
	for i, arg := range o.Args {
		args[i] = arg.Eval(t)
	}

	switch o.Op {
	case "cond":
		if len(args) == 0 {
			return Undefined
		}
		if args[0].Truthy() {
			return argAt(args, 1)
		}
		return argAt(args, 2)
	case "||":
		return reduce(args, func(a, b Value) Value {
			if a.Truthy() {
				return a
			}
			return b
		})
	case "&&":
		return reduce(args, func(a, b Value) Value {
			if !a.Truthy() {
				return a
			}
			return b
		})
	case ">", ">=", "<=", "<":
		if len(args) != 2 {
			return Undefined
		}
		return Bool(compareOrdered(o.Op, args[0], args[1]))
	case "=", "==":
		if len(args) != 2 {
			return Undefined
		}
		return Bool(valuesEqual(args[0], args[1]))
	case "!=":
		if len(args) != 2 {
			return Undefined
		}
		return Bool(!valuesEqual(args[0], args[1]))
	case "+":
		return reduce(args, add)
	case "-", "*", "/":
		op := o.Op
		return reduce(args, func(a, b Value) Value {
			return arithmetic(op, a, b)
		})
	case "eval":
		return argAt(args, 0)
	case "!":
		if len(args) != 1 {
			return Undefined
		}
		return Bool(!args[0].Truthy())
	case "tag":
		if len(args) != 1 || t == nil {
			return Undefined
		}
		value, ok := t.Tag(args[0].String())
		if !ok {
			return Undefined
		}
		return String(value)
	case "minx", "miny", "maxx", "maxy":
		if t == nil {
			return Undefined
		}
		extent, ok := t.Extent()
		if !ok {
			return Undefined
		}
		switch o.Op {
		case "minx":
			return Number(extent.MinX)
		case "miny":
			return Number(extent.MinY)
		case "maxx":
			return Number(extent.MaxX)
		default:
			return Number(extent.MaxY)
		}
	case "any":
		for _, arg := range args {
			if arg.IsDefined() {
				return arg
			}
		}
		return Undefined
	case "concat":
		var sb strings.Builder
		for _, arg := range args {
			sb.WriteString(arg.String())
		}
		return String(sb.String())
	case "rgb", "rgba":
		return colorFunction(o.Op, args)
	}
	return Undefined
}

func argAt(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

func reduce(args []Value, fn func(a, b Value) Value) Value {
	if len(args) == 0 {
		return Undefined
	}
	acc := args[0]
	for _, arg := range args[1:] {
		acc = fn(acc, arg)
	}
	return acc
}

func add(a, b Value) Value {
	if !a.IsDefined() || !b.IsDefined() {
		return Undefined
	}
	if (a.kind == KindString && !isNumeric(a)) || (b.kind == KindString && !isNumeric(b)) {
		return String(a.String() + b.String())
	}
	return arithmetic("+", a, b)
}

func arithmetic(op string, a, b Value) Value {
	if !a.IsDefined() || !b.IsDefined() {
		return Undefined
	}
	if a.kind == KindVector || b.kind == KindVector {
		return vectorArithmetic(op, a, b)
	}
	x, ok := a.Float64()
	if !ok {
		return Undefined
	}
	y, ok := b.Float64()
	if !ok {
		return Undefined
	}
	return finite(applyArithmetic(op, x, y))
}

func vectorArithmetic(op string, a, b Value) Value {
	xs, ok := a.Floats()
	if !ok {
		return Undefined
	}
	ys, ok := b.Floats()
	if !ok {
		return Undefined
	}

	switch {
	case a.kind == KindVector && b.kind == KindVector:
		if len(xs) != len(ys) {
			return Undefined
		}
	case a.kind == KindVector:
		ys = repeat(ys[0], len(xs))
	default:
		xs = repeat(xs[0], len(ys))
	}

	result := make([]float64, len(xs))
	for i := range xs {
		f := applyArithmetic(op, xs[i], ys[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Undefined
		}
		result[i] = f
	}
	return Value{kind: KindVector, vec: result}
}

func applyArithmetic(op string, x, y float64) float64 {
	switch op {
	case "+":
		return x + y
	case "-":
		return x - y
	case "*":
		return x * y
	case "/":
		return x / y
	}
	return math.NaN()
}

func finite(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return Number(f)
}

func repeat(f float64, n int) []float64 {
	fs := make([]float64, n)
	for i := range fs {
		fs[i] = f
	}
	return fs
}

func compareOrdered(op string, a, b Value) bool {
	if !a.IsDefined() || !b.IsDefined() || a.kind == KindVector || b.kind == KindVector {
		return false
	}

	var cmp int
	x, xok := a.Float64()
	y, yok := b.Float64()
	switch {
	case xok && yok && isNumeric(a) && isNumeric(b):
		cmp = compareFloats(x, y)
	case a.kind == KindString && b.kind == KindString:
		cmp = strings.Compare(a.str, b.str)
	default:
		return false
	}

	switch op {
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	default:
		return cmp < 0
	}
}

func compareFloats(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func valuesEqual(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		x, _ := a.Float64()
		y, _ := b.Float64()
		return x == y
	}
	return a.Equal(b)
}

func colorFunction(op string, args []Value) Value {
	want := 3
	if op == "rgba" {
		want = 4
	}
	if len(args) != want {
		return Undefined
	}

	channels := make([]float64, want)
	for i, arg := range args {
		f, ok := arg.Float64()
		if !ok {
			return Undefined
		}
		channels[i] = f
	}

	// channels given as fractions are scaled to 0..255
	if channels[0] <= 1 && channels[1] <= 1 && channels[2] <= 1 {
		for i := 0; i < 3; i++ {
			channels[i] *= 255
		}
	}

	if op == "rgb" {
		return String(fmt.Sprintf("rgb(%s,%s,%s)",
			formatNumber(math.Round(channels[0])), formatNumber(math.Round(channels[1])), formatNumber(math.Round(channels[2]))))
	}
	return String(fmt.Sprintf("rgba(%s,%s,%s,%s)",
		formatNumber(math.Round(channels[0])), formatNumber(math.Round(channels[1])), formatNumber(math.Round(channels[2])), formatNumber(channels[3])))
}
