package ir

import "slices"

// OperatorID indexes an operator inside its Graph.
type OperatorID int

// OperandID indexes an operand inside its Graph.
type OperandID int

// NoOperator marks an operand without a producer.
const NoOperator OperatorID = -1

// Operand is a named tensor slot with one producer and any number of consumers.
// Edges are arena indices; the Graph owns every node.
type Operand struct {
	ID        OperandID
	Name      string
	Type      DataType
	Shape     []int // -1 marks an unknown dimension
	Producer  OperatorID
	Consumers []OperatorID
}

// Operator is a graph node.
type Operator struct {
	ID         OperatorID
	Type       string
	Name       string
	Inputs     []OperandID
	Outputs    []OperandID
	InputNames []string // logical input aliases, "" when unset
	Params     map[string]Parameter
	Attrs      map[string]Attribute
}

// Param returns the named parameter.
func (op *Operator) Param(name string) (Parameter, bool) {
	p, ok := op.Params[name]
	return p, ok
}

// Attr returns the named attribute.
func (op *Operator) Attr(name string) (Attribute, bool) {
	a, ok := op.Attrs[name]
	return a, ok
}

// InputName returns the alias of the i-th input, or "".
func (op *Operator) InputName(i int) string {
	if i < 0 || i >= len(op.InputNames) {
		return ""
	}
	return op.InputNames[i]
}

// Graph owns every Operator and Operand it creates.
// Nodes are appended in load order and never removed or reordered.
type Graph struct {
	operators []*Operator
	operands  []*Operand
	byName    map[string]OperandID

	version          int
	declaredOperands int
	warnings         []error
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{byName: make(map[string]OperandID)}
}

// Reset drops every node and warning.
func (g *Graph) Reset() {
	g.operators = nil
	g.operands = nil
	g.byName = make(map[string]OperandID)
	g.version = 0
	g.declaredOperands = 0
	g.warnings = nil
}

// Version returns the descriptor format marker read by Load.
func (g *Graph) Version() int {
	return g.version
}

// DeclaredOperands returns the operand count announced by the descriptor header.
// It is advisory; len(Operands()) is authoritative.
func (g *Graph) DeclaredOperands() int {
	return g.declaredOperands
}

// Warnings returns the non-fatal problems recorded while loading.
func (g *Graph) Warnings() []error {
	return g.warnings
}

// Operators returns all operators in creation order.
func (g *Graph) Operators() []*Operator {
	return g.operators
}

// Operands returns all operands in creation order.
func (g *Graph) Operands() []*Operand {
	return g.operands
}

// Operator returns the operator with the given id, or nil.
func (g *Graph) Operator(id OperatorID) *Operator {
	if id < 0 || int(id) >= len(g.operators) {
		return nil
	}
	return g.operators[id]
}

// Operand returns the operand with the given id, or nil.
func (g *Graph) Operand(id OperandID) *Operand {
	if id < 0 || int(id) >= len(g.operands) {
		return nil
	}
	return g.operands[id]
}

// GetOperand returns the operand with the given name, or nil.
func (g *Graph) GetOperand(name string) *Operand {
	id, ok := g.byName[name]
	if !ok {
		return nil
	}
	return g.operands[id]
}

// Producer returns the operator producing r, or nil.
func (g *Graph) Producer(r *Operand) *Operator {
	return g.Operator(r.Producer)
}

// Consumers returns the operators reading r.
func (g *Graph) Consumers(r *Operand) []*Operator {
	ops := make([]*Operator, 0, len(r.Consumers))
	for _, id := range r.Consumers {
		ops = append(ops, g.operators[id])
	}
	return ops
}

// InputOperands returns op's inputs in positional order.
func (g *Graph) InputOperands(op *Operator) []*Operand {
	return g.resolve(op.Inputs)
}

// OutputOperands returns op's outputs in positional order.
func (g *Graph) OutputOperands(op *Operator) []*Operand {
	return g.resolve(op.Outputs)
}

func (g *Graph) resolve(ids []OperandID) []*Operand {
	rs := make([]*Operand, len(ids))
	for i, id := range ids {
		rs[i] = g.operands[id]
	}
	return rs
}

// NewOperator appends an operator.
func (g *Graph) NewOperator(typ, name string) *Operator {
	op := &Operator{
		ID:     OperatorID(len(g.operators)),
		Type:   typ,
		Name:   name,
		Params: make(map[string]Parameter),
		Attrs:  make(map[string]Attribute),
	}
	g.operators = append(g.operators, op)
	return op
}

// NewOperand appends an operand. It returns nil if the name is taken.
func (g *Graph) NewOperand(name string) *Operand {
	if _, ok := g.byName[name]; ok {
		return nil
	}
	r := &Operand{
		ID:       OperandID(len(g.operands)),
		Name:     name,
		Producer: NoOperator,
	}
	g.operands = append(g.operands, r)
	g.byName[name] = r.ID
	return r
}

// Connect records op as a consumer of r and appends r to op's inputs.
func (g *Graph) Connect(op *Operator, r *Operand) {
	op.Inputs = append(op.Inputs, r.ID)
	if !slices.Contains(r.Consumers, op.ID) {
		r.Consumers = append(r.Consumers, op.ID)
	}
}

// Produce records op as the producer of r and appends r to op's outputs.
// It reports false if r already has a producer.
func (g *Graph) Produce(op *Operator, r *Operand) bool {
	if r.Producer != NoOperator {
		return false
	}
	r.Producer = op.ID
	op.Outputs = append(op.Outputs, r.ID)
	return true
}

// TopologicalOrder returns operators with every producer before its consumers.
// Operators on a cycle are appended in creation order after the acyclic part.
func (g *Graph) TopologicalOrder() []*Operator {
	indegree := make([]int, len(g.operators))
	for _, op := range g.operators {
		for _, in := range op.Inputs {
			if g.operands[in].Producer != NoOperator {
				indegree[op.ID]++
			}
		}
	}

	queue := make([]OperatorID, 0, len(g.operators))
	for _, op := range g.operators {
		if indegree[op.ID] == 0 {
			queue = append(queue, op.ID)
		}
	}

	order := make([]*Operator, 0, len(g.operators))
	placed := make([]bool, len(g.operators))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		op := g.operators[id]
		order = append(order, op)
		placed[id] = true

		for _, out := range op.Outputs {
			for _, c := range g.operands[out].Consumers {
				// An operator reading the same operand twice counted it twice.
				for _, in := range g.operators[c].Inputs {
					if in == out {
						indegree[c]--
					}
				}
				if indegree[c] == 0 && !placed[c] {
					placed[c] = true
					queue = append(queue, c)
				}
			}
		}
	}

	for _, op := range g.operators {
		if !placed[op.ID] {
			order = append(order, op)
		}
	}
	return order
}

func (g *Graph) warn(w *LoadWarning) {
	g.warnings = append(g.warnings, w)
}
