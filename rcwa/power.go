package rcwa

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im, pw []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 3 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n : 2*n], buf.data[2*n : need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// accumulatePower adds |v[i]|² to dst[i] for every component slice.
func accumulatePower(dst []float64, components ...[]complex128) {
	re, im, pw, buf := getScratch(len(dst))
	defer putScratch(buf)

	for _, c := range components {
		for i, v := range c {
			re[i] = real(v)
			im[i] = imag(v)
		}
		vecmath.Power(pw, re, im)
		vecmath.AddBlockInPlace(dst, pw)
	}
}

// weightPercent computes dst[i] = 100·w[i]·dst[i].
func weightPercent(dst, w []float64) {
	vecmath.MulBlockInPlace(dst, w)
	vecmath.ScaleBlock(dst, dst, 100)
}
