package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/tensorcore/backend/cpu"
	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/matmul"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/quant"
	"github.com/born-ml/tensorcore/tensor"
)

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tensorcore",
		Short:         "Inspect tensor dispatch, matmul plans and quantized types",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tensorcore %s\n", version)
		},
	}

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "List built-in quantization schemes",
		Args:  cobra.NoArgs,
		RunE:  CatalogHandler,
	}

	quantizeCmd := &cobra.Command{
		Use:   "quantize VALUE...",
		Short: "Quantize values and show the round trip",
		Args:  cobra.MinimumNArgs(1),
		RunE:  QuantizeHandler,
	}
	quantizeCmd.Flags().String("dtype", "quint8", "Quantization scheme")
	quantizeCmd.Flags().Float64("scale", 1, "Quantization scale")
	quantizeCmd.Flags().Int("zero-point", 0, "Zero point for unsigned schemes")

	planCmd := &cobra.Command{
		Use:   "matmul-plan",
		Short: "Show how a matrix product of two ranks is normalized",
		Args:  cobra.NoArgs,
		RunE:  PlanHandler,
	}
	planCmd.Flags().Int("a-rank", 2, "Rank of the left operand")
	planCmd.Flags().Int("b-rank", 2, "Rank of the right operand")
	planCmd.Flags().Bool("transpose-a", false, "Transpose the left operand")
	planCmd.Flags().Bool("transpose-b", false, "Transpose the right operand")
	planCmd.Flags().String("compute-mode", "default", "Accumulation precision (default or float32)")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show kernel selection flags read from the environment",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}

	rootCmd.AddCommand(versionCmd, catalogCmd, quantizeCmd, planCmd, envCmd)
	return rootCmd
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// CatalogHandler prints the built-in quantization descriptors.
func CatalogHandler(cmd *cobra.Command, _ []string) error {
	var data [][]string
	for _, d := range quant.Builtin() {
		ext := d.ExternalName
		if ext == "" {
			ext = "-"
		}
		sign := "signed"
		if d.Unsigned {
			sign = "unsigned"
		}
		data = append(data, []string{
			d.Name, ext, d.Storage.String(),
			strconv.FormatInt(d.QMin, 10), strconv.FormatInt(d.QMax, 10), sign,
		})
	}

	table := newTable(cmd.OutOrStdout(), "NAME", "EXTERNAL", "STORAGE", "QMIN", "QMAX", "SIGN")
	table.AppendBulk(data)
	table.Render()
	return nil
}

// QuantizeHandler quantizes the argument values and prints each stored
// integer next to its dequantized value.
func QuantizeHandler(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("dtype")
	scale, _ := cmd.Flags().GetFloat64("scale")

	d, ok := quant.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown quantization scheme %q", name)
	}
	var zp *int
	if d.Unsigned {
		v, _ := cmd.Flags().GetInt("zero-point")
		zp = &v
	}
	typ, err := quant.CreateQuantizedDtype(d, scale, zp)
	if err != nil {
		return err
	}

	vals := make([]float64, len(args))
	for i, a := range args {
		if vals[i], err = strconv.ParseFloat(a, 64); err != nil {
			return fmt.Errorf("invalid value %q: %w", a, err)
		}
	}

	env := tensor.NewEnv(cpu.New())
	x, err := tensor.FromSlice(vals, tensor.Shape{len(vals)}, env)
	if err != nil {
		return err
	}
	q, err := quant.Quantize(x, typ, d)
	if err != nil {
		return err
	}
	back, err := quant.Dequantize(q, d)
	if err != nil {
		return err
	}

	stored := q.Value().Int64s()
	restored := back.Value().Float64s()
	data := make([][]string, len(vals))
	for i := range vals {
		data[i] = []string{
			strconv.FormatFloat(vals[i], 'g', -1, 64),
			strconv.FormatInt(stored[i], 10),
			strconv.FormatFloat(restored[i], 'g', 6, 64),
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), typ)
	table := newTable(cmd.OutOrStdout(), "INPUT", "STORED", "DEQUANTIZED")
	table.AppendBulk(data)
	table.Render()
	return nil
}

// PlanHandler prints the normalization path, cache key and primitive
// sequence for a matrix product of the given ranks.
func PlanHandler(cmd *cobra.Command, _ []string) error {
	d1, _ := cmd.Flags().GetInt("a-rank")
	d2, _ := cmd.Flags().GetInt("b-rank")
	ta, _ := cmd.Flags().GetBool("transpose-a")
	tb, _ := cmd.Flags().GetBool("transpose-b")
	modeStr, _ := cmd.Flags().GetString("compute-mode")

	if d1 < 1 || d2 < 1 {
		return matmul.ErrScalarOperand
	}
	mode, err := ops.ParseComputeMode(modeStr)
	if err != nil {
		return err
	}

	n := matmul.New(cpu.New())
	key := n.Plan(d1, d2, tensor.Plain(tensor.Float32), tensor.CPU, matmul.Options{TransposeA: ta, TransposeB: tb, ComputeMode: mode})

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "path:        %s\n", key.Path)
	fmt.Fprintf(w, "result rank: %d\n", matmul.ResultRank(d1, d2))
	fmt.Fprintf(w, "cache key:   %s\n", key)
	if key.Path == matmul.PathDot {
		fmt.Fprintln(w, "primitives:  Dot")
		return nil
	}

	prog, err := matmul.Compile(key)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(prog.Ops()))
	for _, op := range prog.Ops() {
		names = append(names, op.Name())
	}
	fmt.Fprintf(w, "program:     %s\n", prog.Name())
	fmt.Fprintf(w, "primitives:  %s\n", strings.Join(names, ", "))
	return nil
}

// EnvHandler prints the kernel selection flags.
func EnvHandler(cmd *cobra.Command, _ []string) error {
	values := config.FromEnv().Values()
	table := newTable(cmd.OutOrStdout(), "VARIABLE", "VALUE")
	for _, k := range slices.Sorted(maps.Keys(values)) {
		table.Append([]string{k, values[k]})
	}
	table.Render()
	return nil
}
