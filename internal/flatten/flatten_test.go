package flatten

import (
	"reflect"
	"strings"
	"testing"

	"github.com/claude/setsheet/internal/boostcamp"
)

func decode(t *testing.T, payload string) boostcamp.Payload {
	t.Helper()
	p, err := boostcamp.Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return p
}

func cell(t *testing.T, tbl Table, row int, col string) any {
	t.Helper()
	for i, c := range tbl.Columns {
		if c == col {
			return tbl.Rows[row][i]
		}
	}
	t.Fatalf("column %q not in table (have %v)", col, tbl.Columns)
	return nil
}

func cellString(t *testing.T, tbl Table, row int, col string) string {
	t.Helper()
	v := cell(t, tbl, row, col)
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	switch x := v.(type) {
	case string:
		return x
	default:
		return ""
	}
}

// TestFlattenReferenceExample verifies the canonical single-set example:
// one row carrying session date, exercise name, set index and values.
func TestFlattenReferenceExample(t *testing.T) {
	p := decode(t, `{"2024-01-01":[{"title":"Leg Day","records":[{"name":"Squat","target_type":"reps","sets":[{"value":100,"amount":5}]}]}]}`)
	tbl := Flatten(p)

	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tbl.Rows))
	}
	if got := cellString(t, tbl, 0, "session_date"); got != "2024-01-01" {
		t.Errorf("session_date = %q, want 2024-01-01", got)
	}
	if got := cellString(t, tbl, 0, "exercise_name"); got != "Squat" {
		t.Errorf("exercise_name = %q, want Squat", got)
	}
	if got := cell(t, tbl, 0, "set_index"); got != 1 {
		t.Errorf("set_index = %v, want 1", got)
	}
	if got := cellString(t, tbl, 0, "set_value_weight"); got != "100" {
		t.Errorf("set_value_weight = %q, want 100", got)
	}
	if got := cellString(t, tbl, 0, "set_amount_reps"); got != "5" {
		t.Errorf("set_amount_reps = %q, want 5", got)
	}
	if got := cellString(t, tbl, 0, "set_target_type"); got != "reps" {
		t.Errorf("set_target_type = %q, want reps (backfilled)", got)
	}
}

// TestFlattenRowPerSet verifies that an exercise with N sets yields exactly
// N rows sharing session/exercise context, with set_index 1..N.
func TestFlattenRowPerSet(t *testing.T) {
	p := decode(t, `{"2024-01-02":[{"title":"Pull","records":[{"name":"Deadlift","sets":[
		{"value":140,"amount":3},{"value":150,"amount":2},{"value":160,"amount":1}]}]}]}`)
	tbl := Flatten(p)

	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tbl.Rows))
	}
	for i := range tbl.Rows {
		if got := cell(t, tbl, i, "set_index"); got != i+1 {
			t.Errorf("row %d set_index = %v, want %d", i, got, i+1)
		}
		if got := cellString(t, tbl, i, "session_date"); got != "2024-01-02" {
			t.Errorf("row %d session_date = %q", i, got)
		}
		if got := cellString(t, tbl, i, "exercise_name"); got != "Deadlift" {
			t.Errorf("row %d exercise_name = %q", i, got)
		}
	}
}

// TestFlattenZeroSets verifies that an exercise with no sets still emits
// exactly one row, with blank set fields.
func TestFlattenZeroSets(t *testing.T) {
	p := decode(t, `{"2024-01-03":[{"records":[
		{"name":"Plank","sets":[]},
		{"name":"Squat","sets":[{"value":60,"amount":10}]}]}]}`)
	tbl := Flatten(p)

	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (one set-less row + one set row)", len(tbl.Rows))
	}
	// The set-less row keeps its exercise context but has a blank set_index.
	if got := cellString(t, tbl, 0, "exercise_name"); got != "Plank" {
		t.Errorf("row 0 exercise_name = %q, want Plank", got)
	}
	if got := cell(t, tbl, 0, "set_index"); got != "" {
		t.Errorf("row 0 set_index = %v, want blank", got)
	}
	if got := cell(t, tbl, 1, "set_index"); got != 1 {
		t.Errorf("row 1 set_index = %v, want 1", got)
	}
}

// TestTargetTypeBackfill verifies that set_target_type uses the set's own
// value when present and the exercise's otherwise, even when the set's
// value is an explicit null.
func TestTargetTypeBackfill(t *testing.T) {
	p := decode(t, `{"2024-01-04":[{"records":[{"name":"Row","target_type":"reps","sets":[
		{"value":50,"amount":8},
		{"value":50,"amount":8,"target_type":"time"},
		{"value":50,"amount":8,"target_type":null}]}]}]}`)
	tbl := Flatten(p)

	want := []string{"reps", "time", "reps"}
	for i, w := range want {
		if got := cellString(t, tbl, i, "set_target_type"); got != w {
			t.Errorf("row %d set_target_type = %q, want %q", i, got, w)
		}
	}
}

// TestColumnSelection verifies the output columns are the intersection of
// the preferred list and available fields, in preferred order: with no sets
// anywhere, the set_* columns disappear entirely.
func TestColumnSelection(t *testing.T) {
	withSets := decode(t, `{"2024-01-05":[{"records":[{"name":"Squat","sets":[{"value":1,"amount":1}]}]}]}`)
	if got := Flatten(withSets).Columns; !reflect.DeepEqual(got, PreferredColumns) {
		t.Errorf("columns with sets = %v, want full preferred list", got)
	}

	noSets := decode(t, `{"2024-01-05":[{"records":[{"name":"Plank"}]}]}`)
	gotCols := Flatten(noSets).Columns
	wantCols := []string{"session_date", "exercise_name", "exercise_type",
		"exercise_target_type", "exercise_muscles", "exercise_equipments"}
	if !reflect.DeepEqual(gotCols, wantCols) {
		t.Errorf("columns without sets = %v, want %v", gotCols, wantCols)
	}

	empty := decode(t, `{}`)
	if got := Flatten(empty); len(got.Columns) != 0 || len(got.Rows) != 0 {
		t.Errorf("empty payload = %d cols, %d rows; want 0, 0", len(got.Columns), len(got.Rows))
	}
}

// TestFlattenDeterminism verifies that flattening the same payload twice
// yields identical tables.
func TestFlattenDeterminism(t *testing.T) {
	raw := `{"2024-01-06":[{"title":"A","records":[{"name":"Squat","sets":[{"value":1,"amount":2},{"value":3,"amount":4}]},{"name":"Curl","sets":[]}]}],
		"2024-01-08":[{"title":"B","records":[{"name":"Bench","sets":[{"value":5,"amount":6}]}]}]}`
	a := Flatten(decode(t, raw))
	b := Flatten(decode(t, raw))
	if !reflect.DeepEqual(a, b) {
		t.Error("two flattens of the same payload differ")
	}
	if len(a.Rows) != 4 {
		t.Errorf("rows = %d, want 4", len(a.Rows))
	}
	// Document order of date keys is preserved.
	if got := cellString(t, a, 0, "session_date"); got != "2024-01-06" {
		t.Errorf("first row date = %q, want 2024-01-06", got)
	}
	if got := cellString(t, a, 3, "session_date"); got != "2024-01-08" {
		t.Errorf("last row date = %q, want 2024-01-08", got)
	}
}

// TestMuscleSummaryStructured verifies "muscle (percent)" rendering for the
// structured muscles_list form, including entries without a percent.
func TestMuscleSummaryStructured(t *testing.T) {
	p := decode(t, `{"2024-01-07":[{"records":[{"name":"Squat",
		"muscles_list":[{"muscle":"quads","percent":60},{"muscle":"glutes"},{"percent":10}],
		"sets":[{"value":1,"amount":1}]}]}]}`)
	tbl := Flatten(p)

	want := "quads (60), glutes"
	if got := cellString(t, tbl, 0, "exercise_muscles"); got != want {
		t.Errorf("exercise_muscles = %q, want %q", got, want)
	}
}

// TestMuscleSummarySimple verifies the fallback join of the plain muscles
// list, and the joined equipments string.
func TestMuscleSummarySimple(t *testing.T) {
	p := decode(t, `{"2024-01-07":[{"records":[{"name":"Dip",
		"muscles":["chest","triceps"],"equipments":["dip bar","belt"],
		"sets":[{"value":1,"amount":1}]}]}]}`)
	tbl := Flatten(p)

	if got := cellString(t, tbl, 0, "exercise_muscles"); got != "chest, triceps" {
		t.Errorf("exercise_muscles = %q, want %q", got, "chest, triceps")
	}
	if got := cellString(t, tbl, 0, "exercise_equipments"); got != "dip bar, belt" {
		t.Errorf("exercise_equipments = %q, want %q", got, "dip bar, belt")
	}
}

// TestFlattenSkipsMalformed verifies that malformed date and records
// entries drop out without affecting well-formed neighbors.
func TestFlattenSkipsMalformed(t *testing.T) {
	p := decode(t, `{
		"2024-01-09": "nope",
		"2024-01-10": [{"records": {"bad": true}}, {"records":[{"name":"Squat","sets":[{"value":1,"amount":1}]}]}]
	}`)
	tbl := Flatten(p)

	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tbl.Rows))
	}
	if got := cellString(t, tbl, 0, "exercise_name"); got != "Squat" {
		t.Errorf("exercise_name = %q, want Squat", got)
	}
}
