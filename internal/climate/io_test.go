package climate

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestReadWide(t *testing.T) {
	t.Parallel()

	in := "code,name,1950-07,1951-07\nUSA,United States,14.1,NA\nGBR,United Kingdom,,9.5\n"
	got, err := ReadWide(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadWide() error = %v", err)
	}
	want := WideTable{
		Columns: []string{"1950-07", "1951-07"},
		Rows: []WideRow{
			{Code: "USA", Name: "United States", Values: []*float64{Float(14.1), nil}},
			{Code: "GBR", Name: "United Kingdom", Values: []*float64{nil, Float(9.5)}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadWide() = %+v, want %+v", got, want)
	}
}

func TestReadWide_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"bad year header", "code,name,abcd\nUSA,United States,1\n"},
		{"bad cell", "code,name,1950\nUSA,United States,warm\n"},
		{"missing name column", "code,1950\nUSA,1\n"},
		{"infinite cell", "code,name,1950\nUSA,United States,+Inf\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadWide(strings.NewReader(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ReadWide() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestReadCountries(t *testing.T) {
	t.Parallel()

	got, err := ReadCountries(strings.NewReader("USA,United States\nCIV,Côte d'Ivoire\n"))
	if err != nil {
		t.Fatalf("ReadCountries() error = %v", err)
	}
	want := []Country{{"USA", "United States"}, {"CIV", "Côte d'Ivoire"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadCountries() = %+v, want %+v", got, want)
	}
}

func TestPredictions_EncodeRead(t *testing.T) {
	t.Parallel()

	preds := []Prediction{{"USA", 2015, 14.25}, {"USA", 2016, -1.5}}
	b, err := EncodePredictions(preds)
	if err != nil {
		t.Fatal(err)
	}
	if want := "country,year,predicted_temperature\nUSA,2015,14.25\nUSA,2016,-1.5\n"; string(b) != want {
		t.Fatalf("EncodePredictions() = %q, want %q", b, want)
	}
	got, err := ReadPredictions(strings.NewReader(string(b)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, preds) {
		t.Fatalf("ReadPredictions() = %+v, want %+v", got, preds)
	}
}

func TestReadPredictions_NonFinite(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"NaN", "Inf", "-inf"} {
		_, err := ReadPredictions(strings.NewReader("country,year,predicted_temperature\nUSA,2015," + v + "\n"))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ReadPredictions(%s) error = %v, want *ParseError", v, err)
		}
		if pe.Column != "predicted_temperature" || pe.Row != 1 {
			t.Errorf("ReadPredictions(%s) error = %+v", v, pe)
		}
	}
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"", " ", "NA", "nan", "NaN", "NULL"} {
		if !IsMissing(c) {
			t.Errorf("IsMissing(%q) = false", c)
		}
	}
	if IsMissing("0") {
		t.Errorf("IsMissing(0) = true")
	}
}
