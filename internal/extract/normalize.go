package extract

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "textcal/internal/log"
	"textcal/internal/model"
)

// Normalize turns the raw reply of any parsing backend into a validated
// Event. sourceText is the original input (not the model reply) and is
// attached to the record for audit. defaultDuration is applied to timed
// events without an explicit end; zero selects model.DefaultDuration.
//
// The decoder is deliberately tolerant: models wrap JSON in prose and code
// fences, drop fields, and occasionally emit a bare "{}". Field absence is
// an expected case everywhere except title and date.
func Normalize(raw, sourceText string, defaultDuration time.Duration) (*model.Event, error) {
	if defaultDuration <= 0 {
		defaultDuration = model.DefaultDuration
	}
	candidate := extractObject(raw)

	if strings.TrimSpace(candidate) == "{}" {
		return nil, ErrEmptyModelOutput
	}

	var resp model.ProviderResponse
	if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
		return nil, &MalformedResponseError{Detail: err.Error(), Preview: preview(raw)}
	}

	title := strings.TrimSpace(resp.Title)
	if title == "" {
		return nil, &MissingTitleError{Preview: preview(raw)}
	}

	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(resp.Date), time.Local)
	if err != nil {
		return nil, &InvalidDateError{Received: resp.Date, Preview: preview(raw)}
	}

	// All-day: explicit flag wins; otherwise a missing start time means
	// all-day rather than silently defaulting to midnight.
	allDay := strings.TrimSpace(resp.StartTime) == ""
	if resp.IsAllDay != nil {
		allDay = *resp.IsAllDay
	}

	ev := &model.Event{
		ID:         model.NewID(),
		Title:      title,
		AllDay:     allDay,
		Location:   strings.TrimSpace(resp.Location),
		Notes:      strings.TrimSpace(resp.Notes),
		SourceText: sourceText,
	}

	if allDay {
		ev.Start = date
	} else {
		h, m := splitClock(resp.StartTime)
		ev.Start = time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, time.Local)

		if strings.TrimSpace(resp.EndTime) != "" {
			eh, em := splitClock(resp.EndTime)
			end := time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, time.Local)
			ev.End = &end
		} else {
			end := ev.Start.Add(defaultDuration)
			ev.End = &end
		}
	}

	if rule := strings.TrimSpace(resp.Recurrence); rule != "" {
		ev.Recurrence = validateRecurrence(rule)
	}

	return ev, nil
}

// extractObject takes the substring between the first '{' and the last
// '}' inclusive, tolerating replies that wrap JSON in prose or code
// fences. Without both delimiters the raw text is returned unchanged and
// left to fail at decode.
func extractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}

// splitClock decomposes "HH:MM" into hour and minute. Components that
// fail to parse clamp to 0; a bad time string is a display nuisance, not
// a parse failure.
func splitClock(s string) (hour, minute int) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) > 0 {
		if h, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
	}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && m >= 0 && m <= 59 {
			minute = m
		}
	}
	return hour, minute
}

// validateRecurrence returns the rule normalized to its bare form when it
// parses as an RRULE, and empty otherwise. A bad rule never fails the
// whole extraction.
func validateRecurrence(rule string) string {
	bare := strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	if _, err := rrule.StrToRRule(bare); err != nil {
		appLog.Debug("dropping unparseable recurrence rule", "rule", preview(rule))
		return ""
	}
	return bare
}
