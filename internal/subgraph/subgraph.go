// Package subgraph compiles small named programs of primitive operations.
//
// A program body is written once against symbolic placeholders (Var). The
// compiled Program can then be run on concrete tensors through any
// ops.Executor, or inlined into another Builder when the caller is itself
// building a program. Programs are immutable and safe for concurrent use.
package subgraph

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Common errors.
var (
	ErrForeignVar   = errors.New("var belongs to a different builder")
	ErrInputCount   = errors.New("wrong number of program inputs")
	ErrEmptyProgram = errors.New("program has no outputs")
)

type nodeKind int

const (
	nodeInput nodeKind = iota
	nodeConst
	nodeOp
)

type node struct {
	kind   nodeKind
	op     ops.Op
	inputs []int
	param  int
	value  []int
}

// Var is a symbolic placeholder for a tensor inside a Builder.
type Var struct {
	id int
	b  *Builder
}

// Valid reports whether v was produced by a Builder.
func (v Var) Valid() bool {
	return v.b != nil
}

// Builder returns the builder v belongs to.
func (v Var) Builder() *Builder {
	return v.b
}

// Builder records primitive applications in program order.
type Builder struct {
	name   string
	device tensor.Device
	nodes  []node
	params int
	err    error
}

// NewBuilder starts an empty program named name whose constants live on device.
func NewBuilder(name string, device tensor.Device) *Builder {
	return &Builder{name: name, device: device}
}

// Name returns the program name.
func (b *Builder) Name() string {
	return b.name
}

// Device returns the device constants are created on.
func (b *Builder) Device() tensor.Device {
	return b.device
}

// Err returns the first error recorded while building.
func (b *Builder) Err() error {
	return b.err
}

// Input appends a new program parameter.
func (b *Builder) Input() Var {
	b.nodes = append(b.nodes, node{kind: nodeInput, param: b.params})
	b.params++
	return Var{id: len(b.nodes) - 1, b: b}
}

// Const records an Int32 constant: a scalar for one value, a vector otherwise.
func (b *Builder) Const(values ...int) Var {
	b.nodes = append(b.nodes, node{kind: nodeConst, value: append([]int(nil), values...)})
	return Var{id: len(b.nodes) - 1, b: b}
}

// Apply records op applied to inputs and returns its single result.
// Errors (foreign vars) are sticky and reported by Err and Compile.
func (b *Builder) Apply(op ops.Op, inputs ...Var) Var {
	ids := make([]int, len(inputs))
	for i, v := range inputs {
		if v.b != b && b.err == nil {
			b.err = fmt.Errorf("%s: operand %d of %s: %w", b.name, i, op, ErrForeignVar)
		}
		ids[i] = v.id
	}
	b.nodes = append(b.nodes, node{kind: nodeOp, op: op, inputs: ids})
	return Var{id: len(b.nodes) - 1, b: b}
}

// Body builds a program from its inputs and returns its outputs.
type Body func(b *Builder, inputs []Var) []Var

// Program is a compiled, immutable body.
type Program struct {
	name    string
	device  tensor.Device
	nodes   []node
	live    []bool
	params  int
	outputs []int
}

// Compile runs body once against nInputs placeholders and freezes the result.
func Compile(name string, device tensor.Device, nInputs int, body Body) (*Program, error) {
	b := NewBuilder(name, device)
	inputs := make([]Var, nInputs)
	for i := range inputs {
		inputs[i] = b.Input()
	}
	return b.Build(body(b, inputs)...)
}

// Build freezes the recorded nodes into a Program producing outputs.
// Nodes that no output depends on are dropped.
func (b *Builder) Build(outputs ...Var) (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%s: %w", b.name, ErrEmptyProgram)
	}

	p := &Program{
		name:   b.name,
		device: b.device,
		nodes:  append([]node(nil), b.nodes...),
		live:   make([]bool, len(b.nodes)),
		params: b.params,
	}
	for _, v := range outputs {
		if v.b != b {
			return nil, fmt.Errorf("%s: output: %w", b.name, ErrForeignVar)
		}
		p.outputs = append(p.outputs, v.id)
		p.markLive(v.id)
	}
	return p, nil
}

func (p *Program) markLive(id int) {
	if p.live[id] {
		return
	}
	p.live[id] = true
	for _, in := range p.nodes[id].inputs {
		p.markLive(in)
	}
}

// Name returns the program name.
func (p *Program) Name() string {
	return p.name
}

// NumInputs returns the number of parameters the program takes.
func (p *Program) NumInputs() int {
	return p.params
}

// Ops lists the primitives the program executes, in order.
func (p *Program) Ops() []ops.Op {
	var out []ops.Op
	for id, n := range p.nodes {
		if p.live[id] && n.kind == nodeOp {
			out = append(out, n.op)
		}
	}
	return out
}

// Run evaluates the program on concrete inputs.
func (p *Program) Run(exec ops.Executor, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != p.params {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", p.name, ErrInputCount, p.params, len(inputs))
	}
	values := make([]*tensor.RawTensor, len(p.nodes))
	for id, n := range p.nodes {
		if !p.live[id] {
			continue
		}
		switch n.kind {
		case nodeInput:
			values[id] = inputs[n.param]
		case nodeConst:
			values[id] = p.constant(n.value)
		case nodeOp:
			args := make([]*tensor.RawTensor, len(n.inputs))
			for i, in := range n.inputs {
				args[i] = values[in]
			}
			out, err := ops.Apply1(exec, n.op, args...)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.name, err)
			}
			values[id] = out
		}
	}

	results := make([]*tensor.RawTensor, len(p.outputs))
	for i, id := range p.outputs {
		results[i] = values[id]
	}
	return results, nil
}

func (p *Program) constant(values []int) *tensor.RawTensor {
	if len(values) == 1 {
		raw, err := tensor.Scalar(values[0], tensor.Int32, p.device)
		if err != nil {
			panic(err)
		}
		return raw
	}
	return tensor.Int32Vector(values, p.device)
}

// Inline replays the program into b, wiring inputs to its parameters.
func (p *Program) Inline(b *Builder, inputs ...Var) ([]Var, error) {
	if len(inputs) != p.params {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", p.name, ErrInputCount, p.params, len(inputs))
	}
	vars := make([]Var, len(p.nodes))
	for id, n := range p.nodes {
		if !p.live[id] {
			continue
		}
		switch n.kind {
		case nodeInput:
			vars[id] = inputs[n.param]
		case nodeConst:
			vars[id] = b.Const(n.value...)
		case nodeOp:
			args := make([]Var, len(n.inputs))
			for i, in := range n.inputs {
				args[i] = vars[in]
			}
			vars[id] = b.Apply(n.op, args...)
		}
	}
	if err := b.Err(); err != nil {
		return nil, err
	}

	outs := make([]Var, len(p.outputs))
	for i, id := range p.outputs {
		outs[i] = vars[id]
	}
	return outs, nil
}
