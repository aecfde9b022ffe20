package spreadsheet

import "fmt"

// ExprBuilder is the callback surface an expression parser drives while
// reading formula text. Value callbacks push a leaf, operator callbacks
// combine previously pushed operands. ValRange and FuncCall are accepted
// for interface completeness but build nothing.
type ExprBuilder interface {
	OpAdd()
	OpSub()
	OpMul()
	OpDiv()
	OpPow()
	OpNeg()
	OpEq()
	OpNe()
	OpLt()
	OpLe()
	OpGt()
	OpGe()
	ValNumber(v float64)
	ValString(s string)
	ValReference(ref string) error
	ValRange(ref string)
	FuncCall(name string, argCount int)
}

// TreeBuilder assembles expression trees from parser callbacks using a
// shift-reduce stack. It is bound to the cell table the finished tree will
// live in: ValReference installs placeholder roots there so the reference
// can resolve later, and Rollback removes them again if the parse fails.
type TreeBuilder struct {
	table   *CellTable
	formula bool
	stack   []Node
	created []Address
	err     error
}

var _ ExprBuilder = (*TreeBuilder)(nil)

// NewTreeBuilder creates a builder bound to table. formula is the owning
// cell's formula-context flag; it is stamped onto text literals so they
// serialize quoted inside formulas.
func NewTreeBuilder(table *CellTable, formula bool) *TreeBuilder {
	return &TreeBuilder{
		table:   table,
		formula: formula,
	}
}

func (b *TreeBuilder) push(n Node) {
	b.stack = append(b.stack, n)
}

func (b *TreeBuilder) pop() Node {
	if len(b.stack) == 0 {
		if b.err == nil {
			b.err = NewSheetError(ErrCodeSyntax, "operator with missing operand")
		}
		return nil
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return n
}

func (b *TreeBuilder) binary(op BinOp) {
	right := b.pop()
	left := b.pop()
	if b.err != nil {
		return
	}
	b.push(&BinaryNode{op: op, left: left, right: right})
}

func (b *TreeBuilder) OpAdd() { b.binary(OpAdd) }
func (b *TreeBuilder) OpSub() { b.binary(OpSub) }

// OpMul pops left-then-right, unlike the other binary callbacks. The
// operands swap sides, which is observable only in serialization.
func (b *TreeBuilder) OpMul() {
	left := b.pop()
	right := b.pop()
	if b.err != nil {
		return
	}
	b.push(&BinaryNode{op: OpMul, left: left, right: right})
}

func (b *TreeBuilder) OpDiv() { b.binary(OpDiv) }
func (b *TreeBuilder) OpPow() { b.binary(OpPow) }
func (b *TreeBuilder) OpEq()  { b.binary(OpEq) }
func (b *TreeBuilder) OpNe()  { b.binary(OpNe) }
func (b *TreeBuilder) OpLt()  { b.binary(OpLt) }
func (b *TreeBuilder) OpLe()  { b.binary(OpLe) }
func (b *TreeBuilder) OpGt()  { b.binary(OpGt) }
func (b *TreeBuilder) OpGe()  { b.binary(OpGe) }

func (b *TreeBuilder) OpNeg() {
	operand := b.pop()
	if b.err != nil {
		return
	}
	b.push(&UnaryNode{operand: operand})
}

func (b *TreeBuilder) ValNumber(v float64) {
	b.push(&NumberNode{value: v})
}

func (b *TreeBuilder) ValString(s string) {
	b.push(&TextNode{text: s, inFormula: b.formula})
}

// ValReference parses a reference with optional '$' markers, guarantees
// the table holds at least a placeholder root at the target address, and
// pushes the reference node.
func (b *TreeBuilder) ValReference(ref string) error {
	addr, colAbs, rowAbs, err := SplitReference(ref)
	if err != nil {
		return err
	}
	if _, ok := b.table.Get(addr); !ok {
		b.table.Set(addr, &RootNode{})
		b.created = append(b.created, addr)
	}
	b.push(&RefNode{
		table:  b.table,
		target: addr,
		colAbs: colAbs,
		rowAbs: rowAbs,
	})
	return nil
}

func (b *TreeBuilder) ValRange(ref string) {}

func (b *TreeBuilder) FuncCall(name string, argCount int) {}

// GetRoot finishes the build: the completed expression becomes the child
// of existing, or of a fresh root when existing is nil. The root's
// formula flag is set either way.
func (b *TreeBuilder) GetRoot(existing *RootNode, formula bool) (*RootNode, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 1 {
		return nil, NewSheetError(ErrCodeSyntax, fmt.Sprintf("incomplete expression: %d operands left", len(b.stack)))
	}
	if existing == nil {
		existing = &RootNode{}
	}
	existing.formula = formula
	existing.child = b.pop()
	return existing, nil
}

// Rollback removes the placeholder roots this builder installed. Called
// when the parse fails so the table is left as it was found.
func (b *TreeBuilder) Rollback() {
	for _, addr := range b.created {
		b.table.Delete(addr)
	}
	b.created = nil
}

// SplitReference splits a formula reference of the form
// [$]LETTERS[$]DIGITS into its address and per-axis absolute flags.
func SplitReference(ref string) (addr Address, colAbs, rowAbs bool, err error) {
	pos := 0
	if pos < len(ref) && ref[pos] == '$' {
		colAbs = true
		pos++
	}
	lettersStart := pos
	for pos < len(ref) && isAddressLetter(ref[pos]) {
		pos++
	}
	letters := ref[lettersStart:pos]
	if letters == "" {
		// at least one column letter must sit between the markers
		return Address{}, false, false, NewSheetError(ErrCodeAddress, fmt.Sprintf("invalid reference: %q", ref))
	}
	if pos < len(ref) && ref[pos] == '$' {
		rowAbs = true
		pos++
	}
	digits := ref[pos:]
	addr, err = ParseAddress(letters + digits)
	if err != nil {
		return Address{}, false, false, NewSheetError(ErrCodeAddress, fmt.Sprintf("invalid reference: %q", ref))
	}
	return addr, colAbs, rowAbs, nil
}
