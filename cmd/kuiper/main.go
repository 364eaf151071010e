// Package main provides the KuiperInfer CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/klauspost/cpuid/v2"

	"github.com/xinyi61/KuiperInfer/infer"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
)

const version = "v0.0.1-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	if len(args) == 0 {
		usage(w)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(w, "KuiperInfer %s\n", version)
		fmt.Fprintf(w, "CPU: %s (%d workers)\n", cpuid.CPU.BrandName, parallel.NumCores())
		return nil
	case "ops":
		for _, op := range infer.ListSupportedOps() {
			fmt.Fprintln(w, op)
		}
		return nil
	case "inspect":
		if len(args) != 3 {
			return errors.New("usage: kuiper inspect <model.param> <model.bin>")
		}
		return inspect(args[1], args[2], w)
	default:
		usage(w)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "KuiperInfer - neural network inference runtime")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                            Show version")
	fmt.Fprintln(w, "  ops                                List supported operators")
	fmt.Fprintln(w, "  inspect <model.param> <model.bin>  Show the operator graph")
}

func inspect(paramPath, binPath string, w io.Writer) error {
	opt := infer.DefaultLoadOptions()
	opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	model, err := infer.Load(paramPath, binPath, opt)
	if err != nil {
		return err
	}
	g := model.Graph()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tINPUTS\tOUTPUTS\tATTRIBUTES")
	for _, op := range g.Operators() {
		attrs := make([]string, 0, len(op.Attrs))
		for _, name := range slices.Sorted(maps.Keys(op.Attrs)) {
			a := op.Attrs[name]
			attrs = append(attrs, fmt.Sprintf("%s%v%s", name, a.Shape, a.Type))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			op.Type, op.Name,
			operandList(g.InputOperands(op)), operandList(g.OutputOperands(op)),
			strings.Join(attrs, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\ninputs: %s\noutputs: %s\n",
		strings.Join(model.InputNames(), ","), strings.Join(model.OutputNames(), ","))
	for _, warning := range model.Warnings() {
		fmt.Fprintln(w, "warning:", warning)
	}
	return nil
}

func operandList(operands []*infer.Operand) string {
	names := make([]string, len(operands))
	for i, r := range operands {
		names[i] = r.Name
	}
	return strings.Join(names, ",")
}
