package ir

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/xinyi61/KuiperInfer/internal/blob"
)

// maxLineSize bounds a single descriptor line. Operators with many
// parameters produce long lines.
const maxLineSize = 16 << 20

// LoadOptions configures descriptor loading.
type LoadOptions struct {
	// Logger receives one record per load warning (default: slog.Default()).
	Logger *slog.Logger

	// Strict returns an error after loading if any warning was recorded.
	// The graph is populated either way.
	Strict bool
}

// DefaultLoadOptions returns the default loading options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Logger: slog.Default(),
		Strict: false,
	}
}

func resolveOptions(opts []LoadOptions) LoadOptions {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return opt
}

// Load reads a graph from a descriptor file and a blob store archive.
//
// Example:
//
//	g, err := ir.Load("model.param", "model.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	x := g.GetOperand("x")
func Load(paramPath, binPath string, opts ...LoadOptions) (*Graph, error) {
	g := NewGraph()
	if err := g.Load(paramPath, binPath, opts...); err != nil {
		return g, err
	}
	return g, nil
}

// Load replaces the graph's contents with the descriptor at paramPath,
// fetching attribute payloads from the archive at binPath.
//
// Only unopenable files and an unreadable header are fatal. Every other
// problem is recorded in Warnings and loading continues.
func (g *Graph) Load(paramPath, binPath string, opts ...LoadOptions) error {
	opt := resolveOptions(opts)

	//nolint:gosec // G304: descriptor path is user input by design
	f, err := os.Open(paramPath)
	if err != nil {
		opt.Logger.Error("open descriptor failed", "path", paramPath, "error", err)
		return fmt.Errorf("%w: %w", ErrIO, errors.Wrapf(err, "open descriptor %s", paramPath))
	}
	defer func() { _ = f.Close() }()

	store, err := blob.OpenZip(binPath)
	if err != nil {
		opt.Logger.Error("open blob store failed", "path", binPath, "error", err)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() { _ = store.Close() }()

	return g.LoadFrom(f, store, opt)
}

// LoadFrom replaces the graph's contents with the descriptor read from r.
// A nil store behaves like an empty one.
func (g *Graph) LoadFrom(r io.Reader, store blob.Store, opts ...LoadOptions) error {
	opt := resolveOptions(opts)
	if store == nil {
		store = blob.NewMemStore(nil)
	}

	g.Reset()
	l := &loader{graph: g, store: store, logger: opt.Logger}
	if err := l.run(r); err != nil {
		return err
	}

	if opt.Strict && len(g.warnings) > 0 {
		return fmt.Errorf("%d load warnings, first: %w", len(g.warnings), g.warnings[0])
	}
	return nil
}

type loader struct {
	graph  *Graph
	store  blob.Store
	logger *slog.Logger
	line   int
}

func (l *loader) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	next := func() ([]string, bool) {
		for sc.Scan() {
			l.line++
			if fields := strings.Fields(sc.Text()); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	header, ok := next()
	if !ok {
		return l.fatal(sc.Err(), "missing format header")
	}
	version, err := strconv.Atoi(header[0])
	if err != nil {
		return l.fatal(nil, "format header %q is not an integer", header[0])
	}
	l.graph.version = version

	counts, ok := next()
	if !ok || len(counts) < 2 {
		return l.fatal(sc.Err(), "missing operator/operand count line")
	}
	operatorCount, err1 := strconv.Atoi(counts[0])
	operandCount, err2 := strconv.Atoi(counts[1])
	if err1 != nil || err2 != nil || operatorCount < 0 {
		return l.fatal(nil, "bad count line %q", strings.Join(counts, " "))
	}
	l.graph.declaredOperands = operandCount

	for i := 0; i < operatorCount; i++ {
		tokens, ok := next()
		if !ok {
			l.warn("", "", fmt.Errorf("%w: descriptor ends after %d of %d operators", ErrParse, i, operatorCount))
			break
		}
		l.loadOperator(tokens)
	}
	if err := sc.Err(); err != nil {
		l.warn("", "", fmt.Errorf("%w: %w", ErrIO, errors.Wrap(err, "read descriptor")))
	}
	return nil
}

func (l *loader) fatal(cause error, format string, args ...any) error {
	err := fmt.Errorf("%w: line %d: %s", ErrParse, l.line, fmt.Sprintf(format, args...))
	if cause != nil {
		err = fmt.Errorf("%w: %w", err, cause)
	}
	l.logger.Error("descriptor header", "error", err)
	return err
}

func (l *loader) warn(op, key string, err error) {
	w := &LoadWarning{Line: l.line, Operator: op, Key: key, Err: err}
	l.graph.warn(w)

	level := slog.LevelWarn
	if errors.Is(err, ErrSchemaMismatch) {
		level = slog.LevelError
	}
	l.logger.Log(context.Background(), level, "descriptor", "line", w.Line, "operator", op, "key", key, "error", err)
}

// loadOperator handles one "type name #in #out in... out... key=value..." line.
func (l *loader) loadOperator(tokens []string) {
	if len(tokens) < 4 {
		l.warn("", "", fmt.Errorf("%w: operator line needs type, name and counts", ErrParse))
		return
	}
	typ, name := tokens[0], tokens[1]
	inCount, err1 := strconv.Atoi(tokens[2])
	outCount, err2 := strconv.Atoi(tokens[3])
	if err1 != nil || err2 != nil || inCount < 0 || outCount < 0 ||
		inCount > len(tokens)-4 || outCount > len(tokens)-4-inCount {
		l.warn(name, "", fmt.Errorf("%w: bad operand counts %q %q", ErrParse, tokens[2], tokens[3]))
		return
	}

	g := l.graph
	op := g.NewOperator(typ, name)

	rest := tokens[4:]
	for _, operandName := range rest[:inCount] {
		r := g.GetOperand(operandName)
		if r == nil {
			l.warn(name, operandName, fmt.Errorf("%w: input must be declared before use", ErrMissingOperand))
			continue
		}
		g.Connect(op, r)
	}

	rest = rest[inCount:]
	for _, operandName := range rest[:outCount] {
		r := g.NewOperand(operandName)
		if r == nil {
			l.warn(name, operandName, ErrDuplicateOperand)
			continue
		}
		g.Produce(op, r)
	}

	for _, kv := range rest[outCount:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || len(key) < 1 {
			l.warn(name, kv, fmt.Errorf("%w: expected key=value", ErrParse))
			continue
		}
		switch key[0] {
		case '@':
			l.loadAttribute(op, key[1:], value)
		case '$':
			l.loadInputName(op, key[1:], value)
		case '#':
			l.loadShape(op, key[1:], value)
		default:
			l.loadParameter(op, key, value)
		}
	}
}

func (l *loader) loadParameter(op *Operator, key, value string) {
	p, err := ParseParameter(value)
	if err != nil {
		l.warn(op.Name, key, err)
		return
	}
	op.Params[key] = p
}

func (l *loader) loadInputName(op *Operator, alias, operandName string) {
	if len(op.InputNames) < len(op.Inputs) {
		names := make([]string, len(op.Inputs))
		copy(names, op.InputNames)
		op.InputNames = names
	}
	for i, id := range op.Inputs {
		if l.graph.operands[id].Name == operandName {
			op.InputNames[i] = alias
			return
		}
	}
	l.warn(op.Name, operandName, fmt.Errorf("%w: alias %q names no input", ErrMissingOperand, alias))
}

func (l *loader) loadShape(op *Operator, operandName, value string) {
	var r *Operand
	for _, id := range append(append([]OperandID(nil), op.Inputs...), op.Outputs...) {
		if cand := l.graph.operands[id]; cand.Name == operandName {
			r = cand
			break
		}
	}
	if r == nil {
		l.warn(op.Name, operandName, fmt.Errorf("%w: shape declared for operand outside operator", ErrMissingOperand))
		return
	}

	shape, dt, err := parseShapeDecl(value, true)
	if err != nil {
		l.warn(op.Name, operandName, err)
		return
	}
	r.Type = dt
	r.Shape = shape
}

func (l *loader) loadAttribute(op *Operator, name, value string) {
	shape, dt, err := parseShapeDecl(value, false)
	if err != nil {
		l.warn(op.Name, "@"+name, err)
		return
	}
	if dt == TypeNone {
		op.Attrs[name] = Attribute{}
		l.warn(op.Name, "@"+name, fmt.Errorf("%w: typecode in %q", ErrUnsupportedType, value))
		return
	}

	attr := Attribute{Type: dt, Shape: shape}
	if len(shape) == 0 {
		op.Attrs[name] = attr
		return
	}
	want := attr.ByteSize()
	if want < 0 {
		l.warn(op.Name, "@"+name, fmt.Errorf("%w: attribute %q exceeds %d bytes", ErrParse, value, MaxAttributeBytes))
		return
	}

	key := op.Name + "." + name
	stored := l.store.Size(key)
	if stored == 0 {
		op.Attrs[name] = attr
		return
	}

	if stored != int64(want) {
		l.warn(op.Name, "@"+name, fmt.Errorf("%w: blob %q has %d bytes, want %d", ErrSchemaMismatch, key, stored, want))
	}

	attr.Data = make([]byte, want)
	if _, err := l.store.Read(key, attr.Data); err != nil {
		l.warn(op.Name, "@"+name, fmt.Errorf("%w: %w", ErrIO, err))
	}
	op.Attrs[name] = attr
}

// parseShapeDecl parses "(d0,d1,...)typecode". With allowUnknown, a "?"
// dimension is returned as -1.
func parseShapeDecl(value string, allowUnknown bool) ([]int, DataType, error) {
	end := strings.LastIndexByte(value, ')')
	if !strings.HasPrefix(value, "(") || end < 0 {
		return nil, TypeNone, fmt.Errorf("%w: shape declaration %q", ErrParse, value)
	}
	dt := ParseDataType(value[end+1:])

	inner := value[1:end]
	if inner == "" {
		return []int{}, dt, nil
	}
	elems := strings.Split(inner, ",")
	shape := make([]int, 0, len(elems))
	for _, elem := range elems {
		if elem == "?" && allowUnknown {
			shape = append(shape, -1)
			continue
		}
		d, err := strconv.Atoi(elem)
		if err != nil || d < 0 {
			return nil, TypeNone, fmt.Errorf("%w: dimension %q in %q", ErrParse, elem, value)
		}
		shape = append(shape, d)
	}
	return shape, dt, nil
}
