package core

// Notes written into the report's notes column. The report is read by
// Hebrew-speaking surveyors, so the wording follows the field team's
// vocabulary (Complot = קומפלוט, layer = שכבה).
const (
	NotePerfect        = "התאמה מלאה"
	NoteMismatchPrefix = "אי התאמה: "
	NotePrimaryOnly    = "נמצא בקומפלוט בלבד"
	NoteLayerOnly      = "נמצא בשכבה בלבד"

	// NoteMultipleRecords flags records of a duplicated key
	// ("multiple records for key"); the arguments are the Complot and
	// layer record counts.
	NoteMultipleRecords = "רשומות מרובות לאותו מפתח (%d בקומפלוט, %d בשכבה)"
	NoteExcessRecord    = "רשומה עודפת ללא התאמה"

	// NoteMissingKey takes the join field name.
	NoteMissingKey = "חסר ערך בשדה %s"

	NoteShortRow    = "שורה %d: %d עמודות מתוך %d"
	NoteLongRow     = "שורה %d: %d עמודות עודפות הושמטו"
	NoteBadCell     = "שורה %d: ערך לא קריא בעמודה %s (%s)"
	NoteUnparsedRow = "שורה %d: לא ניתן לקרוא את השורה (%v)"
)

// mismatchNote formats one mismatched field as "field (primary ≠ layer)".
func mismatchNote(c FieldComparison) string {
	return c.Field + " (" + c.Primary.String() + " ≠ " + c.Layer.String() + ")"
}
