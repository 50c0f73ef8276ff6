// Package boostcamp decodes Boostcamp workout-log JSON exports.
//
// The export is a single object keyed by session date:
//
//	{"2024-01-01": [ {session}, ... ], ...}
//
// where each session holds a list of exercise records and each record a list
// of sets. Real exports are messy: fields go missing between app versions,
// scalars change type, and collections occasionally arrive as non-arrays.
// Decoding is tolerant: malformed collections are skipped and absent
// fields stay null.
package boostcamp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Day holds one date key and its sessions, in document order.
type Day struct {
	Date     string
	Sessions []Session
}

// Payload is a decoded export: one entry per date key, preserving the order
// the keys appear in the file so repeated runs emit identical output.
type Payload []Day

// Session is one workout day's record.
type Session struct {
	Title      Value        `json:"title"`
	Name       Value        `json:"name"`
	FinishedAt Value        `json:"finished_at"`
	ProgramID  Value        `json:"program_id"`
	Type       Value        `json:"type"`
	Day        Value        `json:"day"`
	Week       Value        `json:"week"`
	Records    ExerciseList `json:"records"`
}

// Exercise is one movement performed within a session.
type Exercise struct {
	ID          Value        `json:"id"`
	Name        Value        `json:"name"`
	Type        Value        `json:"type"`
	Source      Value        `json:"source"`
	Custom      Value        `json:"custom"`
	Video       Value        `json:"video"`
	Thumbnail   Value        `json:"thumbnail"`
	TargetType  Value        `json:"target_type"`
	FinishedAt  Value        `json:"finished_at"`
	RestTimer   Value        `json:"rest_timer"`
	Muscles     ValueList    `json:"muscles"`
	MusclesList MuscleShares `json:"muscles_list"`
	Equipments  ValueList    `json:"equipments"`
	Sets        SetList      `json:"sets"`
}

// MuscleShare is one entry of a structured muscles_list.
type MuscleShare struct {
	Muscle  Value `json:"muscle"`
	Percent Value `json:"percent"`
}

// Set is one performed repetition-group within an exercise.
type Set struct {
	Value          Value `json:"value"`
	Amount         Value `json:"amount"`
	TargetType     Value `json:"target_type"`
	WeightUnit     Value `json:"weight_unit"`
	TimeUnit       Value `json:"time_unit"`
	Custom         Value `json:"custom"`
	Source         Value `json:"source"`
	Skipped        Value `json:"skipped"`
	IsCopyLast     Value `json:"isCopyLast"`
	ValueEmpty     Value `json:"valueEmpty"`
	AmountEmpty    Value `json:"amountEmpty"`
	ArchivedRPE    Value `json:"archived_rpe"`
	PreviousRPE    Value `json:"previous_rpe"`
	ArchivedReps   Value `json:"archived_reps"`
	PreviousReps   Value `json:"previous_reps"`
	ArchivedWeight Value `json:"archived_weight"`
	PreviousWeight Value `json:"previous_weight"`
	PreviousTime   Value `json:"previous_time"`
}

// ExerciseList decodes the records array of a session. A non-array value
// (the app has emitted objects and nulls here) decodes to nil instead of
// failing, which drops the session's rows without aborting the run.
type ExerciseList []Exercise

func (l *ExerciseList) UnmarshalJSON(b []byte) error {
	*l = decodeLenientList[Exercise](b)
	return nil
}

// SetList decodes the sets array of an exercise. Non-array values decode to
// nil, which the flattener treats the same as zero sets.
type SetList []Set

func (l *SetList) UnmarshalJSON(b []byte) error {
	*l = decodeLenientList[Set](b)
	return nil
}

// ValueList decodes a plain array of scalars (muscles, equipments).
type ValueList []Value

func (l *ValueList) UnmarshalJSON(b []byte) error {
	*l = decodeLenientList[Value](b)
	return nil
}

// MuscleShares decodes muscles_list. The structured form is an array of
// {muscle, percent} objects; anything else (including an array of plain
// strings, the legacy form) decodes to nil so callers fall back to the
// simple muscles field.
type MuscleShares []MuscleShare

func (l *MuscleShares) UnmarshalJSON(b []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil || len(elems) == 0 {
		*l = nil
		return nil
	}
	// Probe the first element: structured lists start with an object.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(elems[0], &probe); err != nil {
		*l = nil
		return nil
	}
	shares := make(MuscleShares, 0, len(elems))
	for _, raw := range elems {
		var s MuscleShare
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		shares = append(shares, s)
	}
	*l = shares
	return nil
}

// decodeLenientList unmarshals a JSON array element by element, skipping
// elements that do not decode and returning nil for non-array input.
func decodeLenientList[T any](b []byte) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return nil
	}
	out := make([]T, 0, len(elems))
	for _, raw := range elems {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Decode reads an export payload. Only top-level JSON syntax errors (or a
// top-level value that is not an object) are fatal; every malformed entry
// inside the object is skipped silently.
func Decode(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("payload root is %v, want object", tok)
	}

	var payload Payload
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading date key: %w", err)
		}
		date, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading sessions for %s: %w", date, err)
		}

		// A date whose value is not an array of sessions is skipped.
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			continue
		}
		day := Day{Date: date}
		for _, el := range elems {
			var s Session
			if err := json.Unmarshal(el, &s); err != nil {
				continue
			}
			day.Sessions = append(day.Sessions, s)
		}
		payload = append(payload, day)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading payload end: %w", err)
	}
	return payload, nil
}

// DecodeFile reads an export payload from disk.
func DecodeFile(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening payload %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Counts returns the number of sessions, exercises, and sets in the payload.
func (p Payload) Counts() (sessions, exercises, sets int) {
	for _, day := range p {
		sessions += len(day.Sessions)
		for _, s := range day.Sessions {
			exercises += len(s.Records)
			for _, ex := range s.Records {
				sets += len(ex.Sets)
			}
		}
	}
	return sessions, exercises, sets
}
