package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"climate/internal/climate"
	"climate/internal/sqlgen"
	"climate/internal/storage"
	"climate/internal/storage/sqlite"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	repo, closeFn, err := sqlite.NewRepository(context.Background(), sqlite.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(closeFn)

	d := repo.Dialect()
	tables := sqlgen.DefaultTables()
	countries, err := sqlgen.CountryScript(d, tables.Countries, sqlgen.EscapeDouble, []climate.Country{
		{Code: "DEU", Name: "Germany"},
		{Code: "CIV", Name: "Côte d'Ivoire"},
	})
	if err != nil {
		t.Fatal(err)
	}
	annual, err := sqlgen.AnnualScript(d, tables.Annual, sqlgen.EscapeDouble, climate.WideTable{
		Columns: []string{"2015-07"},
		Rows:    []climate.WideRow{{Code: "DEU", Name: "Germany", Values: []*float64{climate.Float(18.5)}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	preds, err := sqlgen.PredictionScript(d, tables, sqlgen.EscapeDouble, []climate.Prediction{
		{Code: "DEU", Year: 2015, Temperature: 18.25},
		{Code: "DEU", Year: 2016, Temperature: 18.75},
		{Code: "CIV", Year: 2015, Temperature: 26},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{countries, annual, preds} {
		if _, err := storage.Apply(context.Background(), repo, s); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	return NewServer(Config{Addr: "127.0.0.1:0"}, repo, tables)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	cases := []struct {
		name     string
		target   string
		wantCode int
		wantHas  []string
	}{
		{"default country", "/", http.StatusOK, []string{"Germany (DEU)", "18.25", "18.50", "2016", "2015-07"}},
		{"named country", "/?country=" + url.QueryEscape("Côte d'Ivoire"), http.StatusOK, []string{"(CIV)", "26.00", "<td>-</td>"}},
		{"countryName alias", "/?countryName=" + url.QueryEscape("Côte d'Ivoire"), http.StatusOK, []string{"(CIV)"}},
		{"unknown country", "/?country=Atlantis", http.StatusNotFound, []string{"No country named Atlantis."}},
		{"unknown path", "/nope", http.StatusNotFound, nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, s, tc.target)
			if rec.Code != tc.wantCode {
				t.Fatalf("status=%d; want %d", rec.Code, tc.wantCode)
			}
			body := rec.Body.String()
			for _, want := range tc.wantHas {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestIndex_EscapesInput(t *testing.T) {
	t.Parallel()

	rec := get(t, testServer(t), "/?country="+url.QueryEscape("<script>"))
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Fatal("country name rendered unescaped")
	}
}

func TestAPICompare(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	rec := get(t, s, "/api/compare?country=Germany")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type=%q", ct)
	}

	var got compareJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Code != "DEU" || len(got.Years) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Years[0].Official == nil || *got.Years[0].Official != 18.5 {
		t.Fatalf("2015 official=%v; want 18.5", got.Years[0].Official)
	}
	if got.Years[1].Official != nil {
		t.Fatalf("2016 official=%v; want null", *got.Years[1].Official)
	}

	if rec := get(t, s, "/api/compare?countryName=Germany"); rec.Code != http.StatusOK {
		t.Fatalf("countryName alias status=%d; want 200", rec.Code)
	}
	if rec := get(t, s, "/api/compare?country=Atlantis"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown country status=%d; want 404", rec.Code)
	}
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("ListenAndServe after cancel: %v", err)
	}
}
