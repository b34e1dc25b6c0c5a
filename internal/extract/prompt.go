package extract

import (
	"strings"
	"time"
)

// BuildPrompt constructs the instruction text handed to a parsing backend.
//
// The current date and weekday are computed per call so that "today" and
// "tomorrow" always mean wall-clock today: relative-date resolution is
// delegated to the model itself, which is asked to emit absolute
// YYYY-MM-DD dates. userContext, when non-empty, is appended verbatim.
func BuildPrompt(now time.Time, input, userContext string) string {
	var b strings.Builder

	b.WriteString("Today is ")
	b.WriteString(now.Format("2006-01-02"))
	b.WriteString(" (")
	b.WriteString(now.Weekday().String())
	b.WriteString(").\n\n")

	b.WriteString("Extract a single calendar event from the text below. ")
	b.WriteString("Respond with exactly one JSON object and nothing else, using these fields:\n\n")
	b.WriteString(`  "title":      short event title (required)` + "\n")
	b.WriteString(`  "date":       event date as YYYY-MM-DD (required)` + "\n")
	b.WriteString(`  "start_time": start time as HH:MM, 24-hour; omit if none given` + "\n")
	b.WriteString(`  "end_time":   end time as HH:MM, 24-hour; omit if none given` + "\n")
	b.WriteString(`  "location":   place, if mentioned` + "\n")
	b.WriteString(`  "notes":      any remaining useful detail` + "\n")
	b.WriteString(`  "is_all_day": true when the event has no specific time` + "\n")
	b.WriteString(`  "recurrence": iCalendar RRULE (e.g. "FREQ=WEEKLY;BYDAY=MO") only when the text states a repetition` + "\n\n")

	b.WriteString("Resolve relative dates like \"tomorrow\" or \"next Monday\" yourself, ")
	b.WriteString("using today's date above, into absolute YYYY-MM-DD form. ")
	b.WriteString("Omit fields the text gives no value for. Output JSON only.\n")

	if userContext != "" {
		b.WriteString("\nAdditional context from the user:\n")
		b.WriteString(userContext)
		b.WriteString("\n")
	}

	b.WriteString("\nText:\n")
	b.WriteString(input)

	return b.String()
}
