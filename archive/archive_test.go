package archive

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/cwbudde/algo-rcwa/internal/testutil"
	"github.com/cwbudde/algo-rcwa/rcwa"
	"github.com/cwbudde/algo-rcwa/sweep"
)

func result(t *testing.T, v float64) *sweep.Result {
	t.Helper()
	r := sweep.NewResult(1, 1, []float64{0, 1}, "Variable parameter: theta\n", sweep.KeyTheta)
	eff := &rcwa.Efficiencies{
		Rs: [][]float64{{v}}, Rp: [][]float64{{v}},
		Ts: [][]float64{{100 - v}}, Tp: [][]float64{{100 - v}},
	}
	if err := r.Insert(0, eff); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return r
}

func mustAdd(t *testing.T, s *Store, name string, v float64) {
	t.Helper()
	if err := s.Add(name, result(t, v)); err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
}

func entries(names ...string) []Entry {
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = Entry{Name: n, Color: sweep.DefaultColor}
	}
	return out
}

func TestAddListDelete(t *testing.T) {
	s := New()
	if s.NewData() {
		t.Fatal("new store reports new data")
	}

	mustAdd(t, s, "a", 1)
	mustAdd(t, s, "b", 2)
	if err := s.Add("", result(t, 3)); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty name: err = %v, want ErrEmptyName", err)
	}
	if !s.NewData() {
		t.Fatal("NewData = false after Add")
	}
	if s.NewData() {
		t.Fatal("NewData did not reset")
	}

	if got := s.List(); !slices.Equal(got, entries("a", "b")) {
		t.Fatalf("List = %v", got)
	}

	mustAdd(t, s, "a", 5)
	if s.Len() != 2 {
		t.Fatalf("Len = %d after replacing an entry, want 2", s.Len())
	}
	got, ok := s.Get("a")
	if !ok {
		t.Fatal("Get(a) missing")
	}
	if got.Rs.At(0, 0, 0) != 5 || got.Name != "a" {
		t.Fatalf("a = %q with Rs %v, want the replacement", got.Name, got.Rs.At(0, 0, 0))
	}

	if n := s.Delete("a", "missing"); n != 1 {
		t.Fatalf("Delete = %d, want 1", n)
	}
	if got := s.List(); !slices.Equal(got, entries("b")) {
		t.Fatalf("List = %v after delete", got)
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("deleted entry still present")
	}
}

func TestAddStoresCopy(t *testing.T) {
	s := New()
	r := result(t, 1)
	if err := s.Add("a", r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	r.Rs.Set(0, 0, 0, 99)

	got, _ := s.Get("a")
	if v := got.Rs.At(0, 0, 0); v != 1 {
		t.Fatalf("stored Rs = %v after editing the original, want 1", v)
	}
}

func TestSelectionAndSeries(t *testing.T) {
	s := New()
	mustAdd(t, s, "a", 1)
	mustAdd(t, s, "b", 2)
	mustAdd(t, s, "c", 3)

	if err := s.Select("a", "zz"); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("Select unknown: err = %v, want ErrUnknownEntry", err)
	}
	if sel := s.Selected(); len(sel) != 0 {
		t.Fatalf("failed Select changed the selection to %v", sel)
	}

	if err := s.Select("c", "a"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel := s.Selected(); !slices.Equal(sel, []string{"c", "a"}) {
		t.Fatalf("Selected = %v, want [c a]", sel)
	}

	series := s.Series(sweep.Selection{Rs: true, Es: true})
	if len(series) != 4 {
		t.Fatalf("got %d series, want 4", len(series))
	}
	if series[0].Name != "c_Rs" || series[3].Name != "a_Es" {
		t.Fatalf("series names %q .. %q", series[0].Name, series[3].Name)
	}
	testutil.RequireClose(t, "c_Rs", series[0].Y, []float64{3, math.NaN()}, 0)
	testutil.RequireClose(t, "a_Es", series[3].Y, []float64{100, math.NaN()}, 0)

	if n := s.Delete(); n != 2 {
		t.Fatalf("Delete selected = %d, want 2", n)
	}
	if sel := s.Selected(); len(sel) != 0 {
		t.Fatalf("selection = %v after delete", sel)
	}
	if got := s.List(); !slices.Equal(got, entries("b")) {
		t.Fatalf("List = %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	mustAdd(t, s, "first", 12.5)
	mustAdd(t, s, "second", 1.0/3)

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, want := range []string{`"Rs_values"`, "null"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("saved archive has no %s", want)
		}
	}

	loaded := New()
	if err := loaded.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(loaded.List(), s.List()) {
		t.Fatalf("loaded %v, want %v", loaded.List(), s.List())
	}

	for _, name := range []string{"first", "second"} {
		want, _ := s.Get(name)
		got, ok := loaded.Get(name)
		if !ok {
			t.Fatalf("loaded archive has no %q", name)
		}
		testutil.RequireClose(t, name+" Rs", got.Rs.Line(0, 0), want.Rs.Line(0, 0), 0)
		if got.ParameterText != want.ParameterText || !slices.Equal(got.Variable, want.Variable) {
			t.Fatalf("%s metadata = %q %v", name, got.ParameterText, got.Variable)
		}
	}

	for _, in := range []string{"{", `{"x": null}`} {
		if err := New().Load(bytes.NewBufferString(in)); err == nil {
			t.Fatalf("Load(%s) accepted", in)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	results := make([]*sweep.Result, 8)
	for i := range results {
		results[i] = result(t, float64(i))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(results))
	for i, r := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Add(fmt.Sprintf("run-%d", i), r)
			_ = s.List()
			_ = s.Series(sweep.Selection{Ts: true})
			_, _ = s.MarshalJSON()
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Add run-%d: %v", i, err)
		}
	}
	if s.Len() != 8 {
		t.Fatalf("Len = %d, want 8", s.Len())
	}
}
