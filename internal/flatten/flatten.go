// Package flatten turns a decoded Boostcamp payload into a one-row-per-set
// table. Session fields propagate to every row of the session, exercise
// fields to every row of the exercise, and set fields stay per-row. An
// exercise with no sets still contributes one row so it is visible in the
// output.
package flatten

import (
	"fmt"
	"strings"

	"github.com/claude/setsheet/internal/boostcamp"
)

// PreferredColumns is the fixed output column order. Columns that never
// occur in the data (the set_* group when no exercise has sets) are omitted.
var PreferredColumns = []string{
	"session_date", "exercise_name", "exercise_type",
	"exercise_target_type", "exercise_muscles", "exercise_equipments",
	"set_index", "set_value_weight", "set_amount_reps",
	"set_target_type", "set_weight_unit",
	"archived_rpe", "previous_rpe",
	"archived_reps", "previous_reps",
	"archived_weight", "previous_weight",
}

// Table is an ordered, rectangular view of flattened rows. Cells hold
// string, json.Number, bool, or int (set_index); absent fields are "".
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Flatten expands a payload into rows restricted to PreferredColumns.
func Flatten(p boostcamp.Payload) Table {
	return FlattenColumns(p, PreferredColumns)
}

// FlattenColumns expands a payload into rows restricted to the given
// preferred column list.
func FlattenColumns(p boostcamp.Payload, preferred []string) Table {
	var rows []map[string]any

	for _, day := range p {
		for _, session := range day.Sessions {
			sessionCtx := map[string]any{
				"session_date":        day.Date,
				"session_title":       session.Title.Or(""),
				"session_name":        session.Name.Or(""),
				"session_finished_at": session.FinishedAt.Or(""),
				"program_id":          session.ProgramID.Or(""),
				"session_type":        session.Type.Or(""),
				"session_day":         session.Day.Or(""),
				"session_week":        session.Week.Or(""),
			}

			for _, ex := range session.Records {
				exCtx := map[string]any{
					"exercise_id":          ex.ID.Or(""),
					"exercise_name":        ex.Name.Or(""),
					"exercise_type":        ex.Type.Or(""),
					"exercise_source":      ex.Source.Or(""),
					"exercise_custom":      ex.Custom.Or(""),
					"exercise_video":       ex.Video.Or(""),
					"exercise_thumbnail":   ex.Thumbnail.Or(""),
					"exercise_target_type": ex.TargetType.Or(""),
					"exercise_finished_at": ex.FinishedAt.Or(""),
					"exercise_muscles":     MuscleSummary(ex),
					"exercise_equipments":  joinValues(ex.Equipments, ", "),
					"exercise_rest_timer":  ex.RestTimer.Or(""),
				}

				if len(ex.Sets) == 0 {
					rows = append(rows, merge(sessionCtx, exCtx, nil))
					continue
				}

				for i, set := range ex.Sets {
					setCtx := map[string]any{
						"set_index":        i + 1,
						"set_value_weight": set.Value.Or(""),
						"set_amount_reps":  set.Amount.Or(""),
						"set_target_type":  set.TargetType.Or(exCtx["exercise_target_type"]),
						"set_weight_unit":  set.WeightUnit.Or(""),
						"set_time_unit":    set.TimeUnit.Or(""),
						"set_custom":       set.Custom.Or(""),
						"set_source":       set.Source.Or(""),
						"set_skipped":      set.Skipped.Or(""),
						"set_isCopyLast":   set.IsCopyLast.Or(false),
						"set_valueEmpty":   set.ValueEmpty.Or(""),
						"set_amountEmpty":  set.AmountEmpty.Or(""),
						"archived_rpe":     set.ArchivedRPE.Or(""),
						"previous_rpe":     set.PreviousRPE.Or(""),
						"archived_reps":    set.ArchivedReps.Or(""),
						"previous_reps":    set.PreviousReps.Or(""),
						"archived_weight":  set.ArchivedWeight.Or(""),
						"previous_weight":  set.PreviousWeight.Or(""),
						"previous_time":    set.PreviousTime.Or(""),
					}
					rows = append(rows, merge(sessionCtx, exCtx, setCtx))
				}
			}
		}
	}

	return project(rows, preferred)
}

// MuscleSummary derives the exercise_muscles cell. The structured
// muscles_list form renders as "muscle (percent)" entries; the legacy plain
// muscles list is joined as-is.
func MuscleSummary(ex boostcamp.Exercise) string {
	if len(ex.MusclesList) > 0 {
		var parts []string
		for _, m := range ex.MusclesList {
			if m.Muscle.IsNull() || m.Muscle.String() == "" {
				continue
			}
			if pct := m.Percent.String(); pct != "" {
				parts = append(parts, fmt.Sprintf("%s (%s)", m.Muscle.String(), pct))
			} else {
				parts = append(parts, m.Muscle.String())
			}
		}
		return strings.Join(parts, ", ")
	}
	return joinValues(ex.Muscles, ", ")
}

func joinValues(vals []boostcamp.Value, sep string) string {
	if len(vals) == 0 {
		return ""
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}

func merge(ctxs ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, ctx := range ctxs {
		for k, v := range ctx {
			out[k] = v
		}
	}
	return out
}

// project restricts rows to the preferred columns that actually occur,
// keeping preferred order. A column occurs when any row carries its key,
// so the set_* group drops out of set-less payloads.
func project(rows []map[string]any, preferred []string) Table {
	var cols []string
	for _, c := range preferred {
		for _, row := range rows {
			if _, ok := row[c]; ok {
				cols = append(cols, c)
				break
			}
		}
	}

	t := Table{Columns: cols, Rows: make([][]any, 0, len(rows))}
	for _, row := range rows {
		cells := make([]any, len(cols))
		for i, c := range cols {
			if v, ok := row[c]; ok {
				cells[i] = v
			} else {
				cells[i] = ""
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
