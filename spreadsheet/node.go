package spreadsheet

import (
	"math"
	"strconv"
	"strings"
)

// Node is one vertex of a cell's expression tree. The operation set is
// closed: evaluation, deep cloning into a destination table, shifting of
// relative references, serialization, and cycle detection.
type Node interface {
	// Eval computes the node's Value, resolving references through the
	// table they are bound to.
	Eval() Value

	// Clone returns a structurally independent copy of the subtree.
	// References in the copy are rebound to dst and guarantee dst holds
	// at least a placeholder root at their target address.
	Clone(dst *CellTable) Node

	// ShiftRefs translates the relative axes of every reference in the
	// subtree by off. Absolute axes are untouched.
	ShiftRefs(off Offset)

	// writeTo appends the node's serialized form.
	writeTo(sb *strings.Builder)

	// hasCycle reports whether following references from this subtree
	// revisits an address already on the current DFS path.
	hasCycle(visited map[Address]bool) bool
}

// BinOp identifies a binary operator node variant.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// token returns the operator's serialized form.
func (op BinOp) token() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

// NumberNode is a numeric literal.
type NumberNode struct {
	value float64
}

func (n *NumberNode) Eval() Value {
	return Number(n.value)
}

func (n *NumberNode) Clone(dst *CellTable) Node {
	return &NumberNode{value: n.value}
}

func (n *NumberNode) ShiftRefs(off Offset) {}

func (n *NumberNode) writeTo(sb *strings.Builder) {
	sb.WriteString(formatNumber(n.value))
}

func (n *NumberNode) hasCycle(visited map[Address]bool) bool {
	return false
}

// TextNode is a text literal. inFormula mirrors the owning root's formula
// flag and governs serialization only: quoted with doubled '"' inside a
// formula, raw otherwise.
type TextNode struct {
	text      string
	inFormula bool
}

func (n *TextNode) Eval() Value {
	return Text(n.text)
}

func (n *TextNode) Clone(dst *CellTable) Node {
	return &TextNode{text: n.text, inFormula: n.inFormula}
}

func (n *TextNode) ShiftRefs(off Offset) {}

func (n *TextNode) writeTo(sb *strings.Builder) {
	if !n.inFormula {
		sb.WriteString(n.text)
		return
	}
	sb.WriteByte('"')
	for _, ch := range n.text {
		if ch == '"' {
			sb.WriteByte('"')
		}
		sb.WriteRune(ch)
	}
	sb.WriteByte('"')
}

func (n *TextNode) hasCycle(visited map[Address]bool) bool {
	return false
}

// RefNode resolves another cell through a non-owning table handle. colAbs
// and rowAbs mark axes pinned by a '$' marker; ShiftRefs leaves those
// untouched.
type RefNode struct {
	table  *CellTable
	target Address
	colAbs bool
	rowAbs bool
}

func (n *RefNode) Eval() Value {
	root, ok := n.table.Get(n.target)
	if !ok {
		return Undefined
	}
	return root.Eval()
}

func (n *RefNode) Clone(dst *CellTable) Node {
	dst.Ensure(n.target)
	return &RefNode{
		table:  dst,
		target: n.target,
		colAbs: n.colAbs,
		rowAbs: n.rowAbs,
	}
}

func (n *RefNode) ShiftRefs(off Offset) {
	if n.colAbs {
		off.Cols = 0
	}
	if n.rowAbs {
		off.Rows = 0
	}
	n.target = n.target.Shift(off)
}

func (n *RefNode) writeTo(sb *strings.Builder) {
	if n.colAbs {
		sb.WriteByte('$')
	}
	sb.WriteString(n.target.ColumnLabel())
	if n.rowAbs {
		sb.WriteByte('$')
	}
	sb.WriteString(strconv.Itoa(n.target.Row))
}

func (n *RefNode) hasCycle(visited map[Address]bool) bool {
	if visited[n.target] {
		return true
	}
	visited[n.target] = true
	detected := false
	if root, ok := n.table.Get(n.target); ok {
		detected = root.hasCycle(visited)
	}
	if !detected {
		// off the DFS path again; sibling branches may revisit it
		visited[n.target] = false
	}
	return detected
}

// UnaryNode is unary minus.
type UnaryNode struct {
	operand Node
}

func (n *UnaryNode) Eval() Value {
	operand := n.operand.Eval()
	if num, ok := operand.Number(); ok {
		return Number(-num)
	}
	return Undefined
}

func (n *UnaryNode) Clone(dst *CellTable) Node {
	return &UnaryNode{operand: n.operand.Clone(dst)}
}

func (n *UnaryNode) ShiftRefs(off Offset) {
	n.operand.ShiftRefs(off)
}

func (n *UnaryNode) writeTo(sb *strings.Builder) {
	sb.WriteString("(-")
	n.operand.writeTo(sb)
	sb.WriteByte(')')
}

func (n *UnaryNode) hasCycle(visited map[Address]bool) bool {
	return n.operand.hasCycle(visited)
}

// BinaryNode covers both arithmetic and relational operators; the op tag
// selects the evaluation rule.
type BinaryNode struct {
	op    BinOp
	left  Node
	right Node
}

func (n *BinaryNode) Eval() Value {
	left := n.left.Eval()
	right := n.right.Eval()
	switch n.op {
	case OpAdd:
		return evalAdd(left, right)
	case OpSub, OpMul, OpDiv, OpPow:
		return evalArithmetic(n.op, left, right)
	default:
		return evalCompare(n.op, left, right)
	}
}

func (n *BinaryNode) Clone(dst *CellTable) Node {
	return &BinaryNode{
		op:    n.op,
		left:  n.left.Clone(dst),
		right: n.right.Clone(dst),
	}
}

func (n *BinaryNode) ShiftRefs(off Offset) {
	n.left.ShiftRefs(off)
	n.right.ShiftRefs(off)
}

func (n *BinaryNode) writeTo(sb *strings.Builder) {
	sb.WriteByte('(')
	n.left.writeTo(sb)
	sb.WriteString(n.op.token())
	n.right.writeTo(sb)
	sb.WriteByte(')')
}

func (n *BinaryNode) hasCycle(visited map[Address]bool) bool {
	return n.left.hasCycle(visited) || n.right.hasCycle(visited)
}

// evalAdd implements '+': numeric sum for two numbers, concatenation when
// one side is text and the other is text or a number (numbers render with
// formatNumber), undefined otherwise.
func evalAdd(left, right Value) Value {
	if ln, ok := left.Number(); ok {
		if rn, ok := right.Number(); ok {
			return Number(ln + rn)
		}
		if rt, ok := right.Text(); ok {
			return Text(formatNumber(ln) + rt)
		}
		return Undefined
	}
	if lt, ok := left.Text(); ok {
		if rt, ok := right.Text(); ok {
			return Text(lt + rt)
		}
		if rn, ok := right.Number(); ok {
			return Text(lt + formatNumber(rn))
		}
	}
	return Undefined
}

// evalArithmetic implements '-', '*', '/', '^' over two numbers; anything
// else, and division by exactly zero, is undefined.
func evalArithmetic(op BinOp, left, right Value) Value {
	ln, lok := left.Number()
	rn, rok := right.Number()
	if !lok || !rok {
		return Undefined
	}
	switch op {
	case OpSub:
		return Number(ln - rn)
	case OpMul:
		return Number(ln * rn)
	case OpDiv:
		if rn == 0.0 {
			return Undefined
		}
		return Number(ln / rn)
	default:
		return Number(math.Pow(ln, rn))
	}
}

// evalCompare implements the relational operators. Number/number and
// text/text pairs compare in their natural order and yield 1 or 0;
// mismatched or undefined operands yield undefined.
func evalCompare(op BinOp, left, right Value) Value {
	if ln, ok := left.Number(); ok {
		if rn, ok := right.Number(); ok {
			return compareResult(op, compareFloats(ln, rn))
		}
		return Undefined
	}
	if lt, ok := left.Text(); ok {
		if rt, ok := right.Text(); ok {
			return compareResult(op, strings.Compare(lt, rt))
		}
	}
	return Undefined
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareResult(op BinOp, cmp int) Value {
	var outcome bool
	switch op {
	case OpEq:
		outcome = cmp == 0
	case OpNe:
		outcome = cmp != 0
	case OpLt:
		outcome = cmp < 0
	case OpLe:
		outcome = cmp <= 0
	case OpGt:
		outcome = cmp > 0
	default:
		outcome = cmp >= 0
	}
	if outcome {
		return Number(1.0)
	}
	return Number(0.0)
}

// RootNode is the single tree node stored per occupied cell. formula
// records whether the cell's source text began with '='; it affects
// serialization only.
type RootNode struct {
	child   Node
	formula bool
}

func (n *RootNode) Eval() Value {
	if n.child == nil {
		return Undefined
	}
	return n.child.Eval()
}

func (n *RootNode) Clone(dst *CellTable) Node {
	clone := &RootNode{formula: n.formula}
	if n.child != nil {
		clone.child = n.child.Clone(dst)
	}
	return clone
}

func (n *RootNode) ShiftRefs(off Offset) {
	if n.child != nil {
		n.child.ShiftRefs(off)
	}
}

func (n *RootNode) writeTo(sb *strings.Builder) {
	if n.formula {
		sb.WriteByte('=')
	}
	if n.child != nil {
		n.child.writeTo(sb)
	}
}

func (n *RootNode) hasCycle(visited map[Address]bool) bool {
	if n.child == nil {
		return false
	}
	return n.child.hasCycle(visited)
}

// IsFormula reports whether the cell's source text began with '='.
func (n *RootNode) IsFormula() bool {
	return n.formula
}

// Serialize returns the cell's textual form: the raw literal for
// non-formula cells, '=' followed by the fully parenthesized expression
// for formulas.
func (n *RootNode) Serialize() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}
