package boostcamp

import (
	"strings"
	"testing"
)

const samplePayload = `{
  "2024-01-01": [
    {
      "title": "Leg Day",
      "name": "Lower A",
      "finished_at": "2024-01-01T18:30:00Z",
      "program_id": 42,
      "type": "strength",
      "day": 1,
      "week": 3,
      "records": [
        {
          "id": "ex-1",
          "name": "Squat",
          "type": "barbell",
          "target_type": "reps",
          "muscles_list": [
            {"muscle": "quads", "percent": 60},
            {"muscle": "glutes", "percent": 40}
          ],
          "equipments": ["barbell", "rack"],
          "sets": [
            {"value": 100, "amount": 5, "weight_unit": "kg"},
            {"value": "102.5", "amount": 5, "target_type": "time"}
          ]
        },
        {
          "name": "Leg Curl",
          "muscles": ["hamstrings"],
          "sets": []
        }
      ]
    }
  ],
  "2024-01-03": "not a list",
  "2024-01-05": [
    {"title": "Broken", "records": {"oops": true}},
    {"title": "Push Day", "records": [{"name": "Bench Press", "sets": [{"value": 80, "amount": 8}]}]}
  ]
}`

// TestDecodeSample verifies decoding the full sample payload: structure,
// document order of date keys, and lenient handling of malformed entries.
func TestDecodeSample(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	// "2024-01-03" maps to a string, not a session list, so it is skipped.
	if len(p) != 2 {
		t.Fatalf("days = %d, want 2", len(p))
	}
	if p[0].Date != "2024-01-01" || p[1].Date != "2024-01-05" {
		t.Errorf("dates = %q, %q; want 2024-01-01, 2024-01-05", p[0].Date, p[1].Date)
	}

	day1 := p[0]
	if len(day1.Sessions) != 1 {
		t.Fatalf("day1 sessions = %d, want 1", len(day1.Sessions))
	}
	s := day1.Sessions[0]
	if s.Title.String() != "Leg Day" {
		t.Errorf("title = %q, want Leg Day", s.Title.String())
	}
	if s.ProgramID.String() != "42" {
		t.Errorf("program_id = %q, want 42", s.ProgramID.String())
	}
	if len(s.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(s.Records))
	}

	squat := s.Records[0]
	if squat.Name.String() != "Squat" {
		t.Errorf("exercise name = %q, want Squat", squat.Name.String())
	}
	if len(squat.Sets) != 2 {
		t.Fatalf("squat sets = %d, want 2", len(squat.Sets))
	}
	// Numbers keep their source literal regardless of JSON type.
	if got := squat.Sets[0].Value.String(); got != "100" {
		t.Errorf("set 1 value = %q, want 100", got)
	}
	if got := squat.Sets[1].Value.String(); got != "102.5" {
		t.Errorf("set 2 value = %q, want 102.5", got)
	}

	if len(squat.MusclesList) != 2 {
		t.Fatalf("muscles_list = %d entries, want 2", len(squat.MusclesList))
	}
	if got := squat.MusclesList[0].Muscle.String(); got != "quads" {
		t.Errorf("muscle 1 = %q, want quads", got)
	}
	if len(squat.Equipments) != 2 {
		t.Errorf("equipments = %d, want 2", len(squat.Equipments))
	}

	// Second exercise has an empty set list and only simple muscles.
	curl := s.Records[1]
	if len(curl.Sets) != 0 {
		t.Errorf("curl sets = %d, want 0", len(curl.Sets))
	}
	if len(curl.MusclesList) != 0 {
		t.Errorf("curl muscles_list = %d, want 0", len(curl.MusclesList))
	}
	if len(curl.Muscles) != 1 || curl.Muscles[0].String() != "hamstrings" {
		t.Errorf("curl muscles = %v, want [hamstrings]", curl.Muscles)
	}

	// Day 2: session with non-array records decodes to zero records; the
	// well-formed session next to it survives.
	day2 := p[1]
	if len(day2.Sessions) != 2 {
		t.Fatalf("day2 sessions = %d, want 2", len(day2.Sessions))
	}
	if len(day2.Sessions[0].Records) != 0 {
		t.Errorf("broken session records = %d, want 0", len(day2.Sessions[0].Records))
	}
	if len(day2.Sessions[1].Records) != 1 {
		t.Errorf("push session records = %d, want 1", len(day2.Sessions[1].Records))
	}
}

// TestDecodeSyntaxError verifies that top-level JSON syntax errors are fatal.
func TestDecodeSyntaxError(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"2024-01-01": [`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := Decode(strings.NewReader(`[1, 2, 3]`)); err == nil {
		t.Error("expected error for non-object root")
	}
}

// TestDecodeNonArraySets verifies that a sets value of the wrong type
// decodes like an absent set list rather than failing the exercise.
func TestDecodeNonArraySets(t *testing.T) {
	payload := `{"2024-02-01": [{"records": [{"name": "Row", "sets": {"bad": 1}}]}]}`
	p, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	ex := p[0].Sessions[0].Records[0]
	if len(ex.Sets) != 0 {
		t.Errorf("sets = %d, want 0 for non-array value", len(ex.Sets))
	}
}

// TestMusclesListLegacyStrings verifies that a plain-string muscles_list
// (the legacy form) decodes to nil so callers use the muscles field.
func TestMusclesListLegacyStrings(t *testing.T) {
	payload := `{"2024-02-01": [{"records": [{"name": "Dip", "muscles_list": ["chest", "triceps"], "muscles": ["chest"]}]}]}`
	p, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	ex := p[0].Sessions[0].Records[0]
	if len(ex.MusclesList) != 0 {
		t.Errorf("muscles_list = %d entries, want 0 for legacy string form", len(ex.MusclesList))
	}
	if len(ex.Muscles) != 1 {
		t.Errorf("muscles = %d, want 1", len(ex.Muscles))
	}
}

// TestValueNullAndMissing verifies the null/missing distinction: both are
// IsNull, and Or substitutes the default only then.
func TestValueNullAndMissing(t *testing.T) {
	payload := `{"2024-02-01": [{"title": null, "records": []}]}`
	p, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	s := p[0].Sessions[0]
	if !s.Title.IsNull() {
		t.Error("explicit null should be IsNull")
	}
	if !s.Name.IsNull() {
		t.Error("missing field should be IsNull")
	}
	if got := s.Title.Or("fallback"); got != "fallback" {
		t.Errorf("Or = %v, want fallback", got)
	}

	// Empty string is a real value, not null.
	payload2 := `{"2024-02-01": [{"title": "", "records": []}]}`
	p2, _ := Decode(strings.NewReader(payload2))
	if p2[0].Sessions[0].Title.IsNull() {
		t.Error("empty string should not be IsNull")
	}
}

// TestCounts verifies session/exercise/set counting across days.
func TestCounts(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	sessions, exercises, sets := p.Counts()
	if sessions != 3 {
		t.Errorf("sessions = %d, want 3", sessions)
	}
	if exercises != 3 {
		t.Errorf("exercises = %d, want 3", exercises)
	}
	if sets != 3 {
		t.Errorf("sets = %d, want 3", sets)
	}
}
