package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/setsheet/internal/flatten"
)

// FlatSetRow is one flattened set row as stored in the flat_sets table.
// Text columns mirror the export's loose typing; the numeric columns used
// for volume analysis are parsed where possible and NULL otherwise.
type FlatSetRow struct {
	ExportID           uuid.UUID `json:"export_id"`
	SessionDate        string    `json:"session_date"`
	SessionTitle       string    `json:"session_title"`
	ExerciseID         string    `json:"exercise_id"`
	ExerciseName       string    `json:"exercise_name"`
	ExerciseType       string    `json:"exercise_type"`
	ExerciseTargetType string    `json:"exercise_target_type"`
	ExerciseMuscles    string    `json:"exercise_muscles"`
	ExerciseEquipments string    `json:"exercise_equipments"`
	SetIndex           *int      `json:"set_index"`
	SetValueWeight     *float64  `json:"set_value_weight"`
	SetAmountReps      *float64  `json:"set_amount_reps"`
	SetTargetType      string    `json:"set_target_type"`
	SetWeightUnit      string    `json:"set_weight_unit"`
	ArchivedRPE        *float64  `json:"archived_rpe"`
	PreviousRPE        *float64  `json:"previous_rpe"`
	ArchivedReps       *float64  `json:"archived_reps"`
	PreviousReps       *float64  `json:"previous_reps"`
	ArchivedWeight     *float64  `json:"archived_weight"`
	PreviousWeight     *float64  `json:"previous_weight"`
}

// RowsFromTable converts a flattened table into storable rows, tagging each
// with the export run's ID. Columns missing from the table (a set-less
// payload has no set_* columns) become empty/NULL.
func RowsFromTable(exportID uuid.UUID, t flatten.Table) []FlatSetRow {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	text := func(row []any, col string) string {
		i, ok := idx[col]
		if !ok {
			return ""
		}
		return cellString(row[i])
	}
	num := func(row []any, col string) *float64 {
		i, ok := idx[col]
		if !ok {
			return nil
		}
		return cellFloat(row[i])
	}

	rows := make([]FlatSetRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := FlatSetRow{
			ExportID:           exportID,
			SessionDate:        text(row, "session_date"),
			SessionTitle:       text(row, "session_title"),
			ExerciseID:         text(row, "exercise_id"),
			ExerciseName:       text(row, "exercise_name"),
			ExerciseType:       text(row, "exercise_type"),
			ExerciseTargetType: text(row, "exercise_target_type"),
			ExerciseMuscles:    text(row, "exercise_muscles"),
			ExerciseEquipments: text(row, "exercise_equipments"),
			SetValueWeight:     num(row, "set_value_weight"),
			SetAmountReps:      num(row, "set_amount_reps"),
			SetTargetType:      text(row, "set_target_type"),
			SetWeightUnit:      text(row, "set_weight_unit"),
			ArchivedRPE:        num(row, "archived_rpe"),
			PreviousRPE:        num(row, "previous_rpe"),
			ArchivedReps:       num(row, "archived_reps"),
			PreviousReps:       num(row, "previous_reps"),
			ArchivedWeight:     num(row, "archived_weight"),
			PreviousWeight:     num(row, "previous_weight"),
		}
		if i, ok := idx["set_index"]; ok {
			if n, isInt := row[i].(int); isInt {
				r.SetIndex = &n
			}
		}
		rows = append(rows, r)
	}
	return rows
}

// flatSetColumns lists the flat_sets columns written per row, in the order
// flatSetsInsertSQL numbers its placeholders.
var flatSetColumns = []string{
	"export_id", "session_date", "session_title",
	"exercise_id", "exercise_name", "exercise_type", "exercise_target_type",
	"exercise_muscles", "exercise_equipments", "set_index", "set_value_weight",
	"set_amount_reps", "set_target_type", "set_weight_unit",
	"archived_rpe", "previous_rpe", "archived_reps", "previous_reps",
	"archived_weight", "previous_weight",
}

// flatSetsInsertSQL builds the multi-row INSERT statement for n rows.
func flatSetsInsertSQL(n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO flat_sets (")
	b.WriteString(strings.Join(flatSetColumns, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := range flatSetColumns {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("$" + strconv.Itoa(i*len(flatSetColumns)+j+1))
		}
		b.WriteString(")")
	}
	return b.String()
}

// InsertFlatSets batch-inserts flattened set rows. Returns count inserted.
// Re-ingesting a session date replaces its rows via DeleteFlatSets first,
// so the insert itself never has to dedup.
func (db *DB) InsertFlatSets(ctx context.Context, rows []FlatSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(rows)*len(flatSetColumns))
	for _, r := range rows {
		args = append(args, r.ExportID, r.SessionDate, r.SessionTitle,
			r.ExerciseID, r.ExerciseName, r.ExerciseType, r.ExerciseTargetType,
			r.ExerciseMuscles, r.ExerciseEquipments, r.SetIndex, r.SetValueWeight,
			r.SetAmountReps, r.SetTargetType, r.SetWeightUnit,
			r.ArchivedRPE, r.PreviousRPE, r.ArchivedReps, r.PreviousReps,
			r.ArchivedWeight, r.PreviousWeight)
	}

	tag, err := db.Pool.Exec(ctx, flatSetsInsertSQL(len(rows)), args...)
	if err != nil {
		return 0, fmt.Errorf("inserting flat sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteFlatSets removes all rows for one session date so re-ingests always
// reflect the latest flattener output.
func (db *DB) DeleteFlatSets(ctx context.Context, sessionDate string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM flat_sets WHERE session_date = $1`, sessionDate)
	if err != nil {
		return fmt.Errorf("deleting flat sets for %s: %w", sessionDate, err)
	}
	return nil
}

// QueryFlatSets retrieves stored rows in a date range, optionally filtered
// by exercise name (partial, case-insensitive). Dates compare as the ISO
// strings the export uses for its keys.
func (db *DB) QueryFlatSets(ctx context.Context, startDate, endDate, exerciseFilter string) ([]FlatSetRow, error) {
	query := `SELECT export_id, session_date, session_title,
		 exercise_id, exercise_name, exercise_type, exercise_target_type,
		 exercise_muscles, exercise_equipments, set_index, set_value_weight,
		 set_amount_reps, set_target_type, set_weight_unit,
		 archived_rpe, previous_rpe, archived_reps, previous_reps,
		 archived_weight, previous_weight
		 FROM flat_sets
		 WHERE session_date >= $1 AND session_date <= $2`
	args := []any{startDate, endDate}
	if exerciseFilter != "" {
		query += ` AND exercise_name ILIKE $3`
		args = append(args, "%"+exerciseFilter+"%")
	}
	query += ` ORDER BY session_date ASC, exercise_name ASC, set_index ASC NULLS FIRST`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying flat sets: %w", err)
	}
	defer rows.Close()

	var result []FlatSetRow
	for rows.Next() {
		var r FlatSetRow
		if err := rows.Scan(&r.ExportID, &r.SessionDate, &r.SessionTitle,
			&r.ExerciseID, &r.ExerciseName, &r.ExerciseType, &r.ExerciseTargetType,
			&r.ExerciseMuscles, &r.ExerciseEquipments, &r.SetIndex, &r.SetValueWeight,
			&r.SetAmountReps, &r.SetTargetType, &r.SetWeightUnit,
			&r.ArchivedRPE, &r.PreviousRPE, &r.ArchivedReps, &r.PreviousReps,
			&r.ArchivedWeight, &r.PreviousWeight); err != nil {
			return nil, fmt.Errorf("scanning flat set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ExerciseSummary holds per-exercise volume totals over a date range.
type ExerciseSummary struct {
	ExerciseName string  `json:"exercise_name"`
	Sessions     int     `json:"sessions"`
	Sets         int     `json:"sets"`
	TotalReps    float64 `json:"total_reps"`
	Tonnage      float64 `json:"tonnage"`
}

// GetExerciseSummary returns per-exercise set/rep/tonnage totals.
func (db *DB) GetExerciseSummary(ctx context.Context, startDate, endDate string) ([]ExerciseSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name,
		        COUNT(DISTINCT session_date)::int AS sessions,
		        COUNT(set_index)::int AS sets,
		        COALESCE(SUM(set_amount_reps), 0) AS total_reps,
		        COALESCE(SUM(set_value_weight * set_amount_reps), 0) AS tonnage
		 FROM flat_sets
		 WHERE session_date >= $1 AND session_date <= $2
		 GROUP BY exercise_name
		 ORDER BY tonnage DESC, exercise_name ASC`,
		startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("querying exercise summary: %w", err)
	}
	defer rows.Close()

	var result []ExerciseSummary
	for rows.Next() {
		var s ExerciseSummary
		if err := rows.Scan(&s.ExerciseName, &s.Sessions, &s.Sets, &s.TotalReps, &s.Tonnage); err != nil {
			return nil, fmt.Errorf("scanning exercise summary: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// cellString renders a table cell as text, matching the CSV output.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// cellFloat parses a table cell as a number, returning nil for blanks and
// non-numeric text.
func cellFloat(v any) *float64 {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = x
	case int:
		f := float64(x)
		return &f
	case float64:
		return &x
	default:
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
