package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-vecmath/cpu"

	"github.com/cwbudde/algo-rcwa/sweep"
)

// writeResult prints one row per sweep value with the energy sums and the
// efficiencies of orders -orders..orders.
func writeResult(w io.Writer, r *sweep.Result, orders int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{r.VariableKey, "Es", "Ep"}
	for o := -orders; o <= orders; o++ {
		for _, ch := range []string{"Rs", "Rp", "Ts", "Tp"} {
			header = append(header, fmt.Sprintf("%s(%d)", ch, o))
		}
	}
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rule, "\t")); err != nil {
		return err
	}

	es := sweep.Energy(r.Rs, r.Ts)
	ep := sweep.Energy(r.Rp, r.Tp)
	lines := make(map[int][4][]float64, 2*orders+1)
	for o := -orders; o <= orders; o++ {
		lines[o] = [4][]float64{
			sweep.OrderLine(r.Rs, o, 0),
			sweep.OrderLine(r.Rp, o, 0),
			sweep.OrderLine(r.Ts, o, 0),
			sweep.OrderLine(r.Tp, o, 0),
		}
	}

	for i, x := range r.Variable {
		cells := []string{formatCell(x), formatCell(es[i]), formatCell(ep[i])}
		for o := -orders; o <= orders; o++ {
			for _, line := range lines[o] {
				cells = append(cells, formatCell(line[i]))
			}
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func writeParameters(w io.Writer, t *sweep.ParameterTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "Key\tKind\tValue\tMin\tMax\tSweepable\tRange"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, "---\t----\t-----\t---\t---\t---------\t-----"); err != nil {
		return err
	}
	variable := t.Variable()
	for _, k := range t.Keys() {
		p, err := t.Get(k)
		if err != nil {
			return err
		}
		key := p.Key
		if key == variable {
			key += " *"
		}
		rng := "-"
		if p.Sweepable {
			rng = fmt.Sprintf("%s=%g %s=%g %s=%d",
				p.Labels.Start, p.Range.Start, p.Labels.End, p.Range.End, p.Labels.Steps, p.Range.Steps)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%t\t%s\n",
			key, p.Kind, p.Value, p.Min, p.Max, p.Sweepable, rng); err != nil {
			return err
		}
	}
	return tw.Flush()
}

var simdLevels = []struct {
	name  string
	level cpu.SIMDLevel
}{
	{"SSE2", cpu.SIMDSSE2},
	{"AVX", cpu.SIMDAVX},
	{"AVX2", cpu.SIMDAVX2},
	{"AVX-512", cpu.SIMDAVX512},
	{"NEON", cpu.SIMDNEON},
}

func writeInfo(w io.Writer, f cpu.Features) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Architecture\t%s\n", f.Architecture); err != nil {
		return err
	}
	for _, l := range simdLevels {
		if _, err := fmt.Fprintf(tw, "%s\t%t\n", l.name, cpu.Supports(f, l.level)); err != nil {
			return err
		}
	}
	return tw.Flush()
}
