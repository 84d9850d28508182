package climate

import (
	"errors"
	"reflect"
	"testing"
)

func sampleWide() WideTable {
	return WideTable{
		Columns: []string{"1950-07", "1951-07"},
		Rows: []WideRow{
			{Code: "USA", Name: "United States", Values: []*float64{Float(14.1), Float(14.3)}},
			{Code: "CIV", Name: "Côte d'Ivoire", Values: []*float64{Float(26.0), nil}},
		},
	}
}

func TestMelt_RowMajor(t *testing.T) {
	t.Parallel()

	got, err := Melt(sampleWide())
	if err != nil {
		t.Fatalf("Melt() error = %v", err)
	}
	want := []LongRecord{
		{Code: "USA", Year: 1950, Temperature: Float(14.1)},
		{Code: "USA", Year: 1951, Temperature: Float(14.3)},
		{Code: "CIV", Year: 1950, Temperature: Float(26.0)},
		{Code: "CIV", Year: 1951},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Melt() = %+v, want %+v", got, want)
	}
}

func TestMelt_CountIsRowsTimesColumns(t *testing.T) {
	t.Parallel()

	w := sampleWide()
	got, err := Melt(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(w.Rows)*len(w.Columns) {
		t.Fatalf("len = %d, want %d", len(got), len(w.Rows)*len(w.Columns))
	}
}

func TestMelt_BadHeader(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"19x0", "195", "year", ""} {
		w := WideTable{Columns: []string{"1950", h}}
		_, err := Melt(w)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Melt(header %q) error = %v, want *ParseError", h, err)
		}
		if pe.Column != h {
			t.Fatalf("ParseError.Column = %q, want %q", pe.Column, h)
		}
	}
}

func TestMelt_DuplicatesPassThrough(t *testing.T) {
	t.Parallel()

	w := WideTable{
		Columns: []string{"1950", "1950-07"},
		Rows: []WideRow{
			{Code: "USA", Values: []*float64{Float(1), Float(2)}},
			{Code: "USA", Values: []*float64{Float(3), Float(4)}},
		},
	}
	got, err := Melt(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for _, r := range got {
		if r.Code != "USA" || r.Year != 1950 {
			t.Fatalf("unexpected record %+v", r)
		}
	}
}

func TestPivot_RoundTrip(t *testing.T) {
	t.Parallel()

	w := sampleWide()
	long, err := Melt(w)
	if err != nil {
		t.Fatal(err)
	}
	want, err := w.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if got := Pivot(long); !reflect.DeepEqual(got, want) {
		t.Fatalf("Pivot(Melt(w)) = %v, want %v", got, want)
	}
}

func TestDistinctCodes_FirstAppearance(t *testing.T) {
	t.Parallel()

	recs := []LongRecord{{Code: "ZWE"}, {Code: "AFG"}, {Code: "ZWE"}, {Code: "USA"}, {Code: "AFG"}}
	got := DistinctCodes(recs)
	want := []string{"ZWE", "AFG", "USA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DistinctCodes() = %v, want %v", got, want)
	}
}

func TestObserved_DropsMissing(t *testing.T) {
	t.Parallel()

	long, _ := Melt(sampleWide())
	if got := Observed(long); len(got) != 3 {
		t.Fatalf("len(Observed) = %d, want 3", len(got))
	}
}
