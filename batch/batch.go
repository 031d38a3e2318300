package batch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-rcwa/hologram"
	"github.com/cwbudde/algo-rcwa/rcwa"
)

// DefaultSaveInterval is the number of rows written per block when
// Evaluator.SaveInterval is not positive.
const DefaultSaveInterval = 100

// Input column indices.
const (
	ColThetaDeg = iota
	ColPhiDeg
	ColWavelength
	ColWavelengthRec
	ColThetaRec1
	ColPhiRec1
	ColThetaRec2
	ColPhiRec2
	ColThickness
	ColN
	ColDN
	ColNZ
	ColStepsPerCycle
	ColAddARLayer

	// Columns is the number of values in an input row.
	Columns
)

// ColumnNames lists the input columns in order.
var ColumnNames = [Columns]string{
	"thetaDeg", "phiDeg", "lam", "lamHoe",
	"thetaRec1", "phiRec1", "thetaRec2", "phiRec2",
	"thickness", "n", "dn", "dimZ", "stepsPerCycle", "addArLayer",
}

var (
	// ErrColumns is returned for rows with the wrong number of values.
	ErrColumns = errors.New("batch: wrong number of columns")
	// ErrValue is returned for values that cannot be parsed.
	ErrValue = errors.New("batch: invalid value")
)

// Evaluator evaluates input rows. The zero value uses harmonic order 0,
// DefaultSaveInterval and a discarding logger.
type Evaluator struct {
	HarmonicOrder int
	SaveInterval  int
	Logger        *slog.Logger
}

// Stats summarizes a run.
type Stats struct {
	Rows   int
	Failed int
}

// ParseRow maps the fields of one input row onto hologram parameters.
// The transmission medium is vacuum.
func ParseRow(fields []string, harmonicOrder int) (hologram.Params, error) {
	if len(fields) != Columns {
		return hologram.Params{}, fmt.Errorf("%w: got %d, want %d", ErrColumns, len(fields), Columns)
	}
	var v [Columns]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return hologram.Params{}, fmt.Errorf("%w: %s %q", ErrValue, ColumnNames[i], f)
		}
		v[i] = x
	}
	if nz := v[ColNZ]; nz != math.Trunc(nz) || nz < 1 || nz > math.MaxInt32 {
		return hologram.Params{}, fmt.Errorf("%w: dimZ %v", ErrValue, nz)
	}

	return hologram.Params{
		Wavelength:    v[ColWavelength],
		ThetaDeg:      v[ColThetaDeg],
		PhiDeg:        v[ColPhiDeg],
		HarmonicOrder: harmonicOrder,
		ErTrn:         1,
		UrTrn:         1,
		ThetaRec1:     v[ColThetaRec1],
		PhiRec1:       v[ColPhiRec1],
		ThetaRec2:     v[ColThetaRec2],
		PhiRec2:       v[ColPhiRec2],
		WavelengthRec: v[ColWavelengthRec],
		N:             v[ColN],
		DN:            v[ColDN],
		NZ:            int(v[ColNZ]),
		Thickness:     v[ColThickness],
		StepsPerCycle: v[ColStepsPerCycle] != 0,
		AddARLayer:    v[ColAddARLayer] != 0,
	}, nil
}

// Flatten returns Rs, Rp, Ts and Tp of all orders as one row.
func Flatten(eff *rcwa.Efficiencies) []float64 {
	var out []float64
	for _, grid := range [][][]float64{eff.Rs, eff.Rp, eff.Ts, eff.Tp} {
		for _, row := range grid {
			out = append(out, row...)
		}
	}
	return out
}

// RowWidth returns the number of output values per row.
func RowWidth(harmonicOrder int) int { return (2*harmonicOrder + 1) * 4 }

func (e *Evaluator) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// Run reads rows from in and writes one result row per input row to out.
// Empty lines and lines starting with '#' are skipped. Rows that fail to
// evaluate are written as NaN rows. Results are written in blocks of
// SaveInterval rows; the context is checked between rows and the rows
// evaluated so far are written before Run returns.
func (e *Evaluator) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	if e.HarmonicOrder < 0 {
		return Stats{}, fmt.Errorf("%w: harmonic order %d", ErrValue, e.HarmonicOrder)
	}
	interval := e.SaveInterval
	if interval <= 0 {
		interval = DefaultSaveInterval
	}
	log := e.logger()
	width := RowWidth(e.HarmonicOrder)

	var (
		stats   Stats
		block   bytes.Buffer
		pending int
	)
	flush := func() error {
		if pending == 0 {
			return nil
		}
		if _, err := out.Write(block.Bytes()); err != nil {
			return fmt.Errorf("batch: write: %w", err)
		}
		log.Info("save values", "calculated", stats.Rows)
		block.Reset()
		pending = 0
		return nil
	}

	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, errors.Join(err, flush())
		}

		p, err := ParseRow(strings.Fields(text), e.HarmonicOrder)
		if err != nil {
			return stats, errors.Join(fmt.Errorf("batch: line %d: %w", line, err), flush())
		}

		values, err := evaluate(p)
		if err != nil {
			log.Warn("row failed", "line", line, "error", err, "hint", rcwa.Hint(err))
			stats.Failed++
			values = nanRow(width)
		}
		writeRow(&block, values)
		stats.Rows++
		pending++

		if pending >= interval {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Join(fmt.Errorf("batch: read: %w", err), flush())
	}
	if err := flush(); err != nil {
		return stats, err
	}
	log.Info("batch finished", "rows", stats.Rows, "failed", stats.Failed)
	return stats, nil
}

func evaluate(p hologram.Params) ([]float64, error) {
	m, err := hologram.New(p)
	if err != nil {
		return nil, err
	}
	eff, err := m.Calc()
	if err != nil {
		return nil, err
	}
	return Flatten(eff), nil
}

func nanRow(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func writeRow(buf *bytes.Buffer, values []float64) {
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	buf.WriteByte('\n')
}
