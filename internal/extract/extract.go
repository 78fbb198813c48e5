// Package extract provides local field extraction from free-form user text.
//
// Extraction is deliberately literal: it recognizes explicit month-name
// dates, clock times, and prepositional locations. Relative phrases like
// "tomorrow" are left for the assistant to resolve; the extractor only
// records what it can match verbatim.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/hearthplan/hearth/internal/models"
)

var (
	// dateRe matches "<Month-name> <day>[suffix], <year>" with Jan-Dec
	// abbreviations, e.g. "Jan 5th, 2026" or "september 12, 2025".
	dateRe = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+(\d{1,2})(?:st|nd|rd|th)?\s*,\s*(\d{4})`)

	// timeRe matches "<1-2 digit hour>[:<2-digit minute>] <AM|PM>", with the
	// space before the meridiem optional ("5pm", "5:30 PM").
	timeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s?(am|pm)\b`)

	// locationRe matches "(at|in|on) <place>", capturing only the place. The
	// place is a capitalized word sequence, optionally led by "the", or a
	// bare "the <word>" phrase ("at the park").
	locationRe = regexp.MustCompile(`\b(?:at|in|on)\s+((?:[Tt]he\s+)?[A-Z][A-Za-z'-]*(?:\s+[A-Z][A-Za-z'-]*)*|[Tt]he\s+[a-z]+)`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// keeperKeywords classify a message as describing a task or deadline rather
// than a scheduled activity.
var keeperKeywords = []string{"due", "deadline", "submit", "turn in", "hand in", "complete"}

// Fields scans text and returns the attributes it recognizes. Absent
// attributes are left nil so a later merge never clears prior values.
func Fields(text string) models.ParsedFields {
	var fields models.ParsedFields

	if m := dateRe.FindStringSubmatch(text); m != nil {
		if iso, ok := isoDate(m[1], m[2], m[3]); ok {
			fields.Date = &iso
		}
	}
	if m := timeRe.FindStringSubmatch(text); m != nil {
		t := clockTime(m[1], m[2], m[3])
		fields.Time = &t
	}
	if m := locationRe.FindStringSubmatch(text); m != nil {
		loc := m[1]
		fields.Location = &loc
	}

	slog.Debug("extract.Fields: scanned text",
		"length", len(text),
		"hasDate", fields.Date != nil,
		"hasTime", fields.Time != nil,
		"hasLocation", fields.Location != nil)
	return fields
}

// ClassifyKeeper reports whether text describes a keeper (task/deadline)
// using a fixed case-insensitive keyword set.
func ClassifyKeeper(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keeperKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NextRequiredField returns the first missing field in the extractor's
// required order (eventName, date, time, location). The second return is
// false when every required field is present.
func NextRequiredField(fields models.ParsedFields) (models.FieldKey, bool) {
	for _, key := range models.RequiredFieldOrder {
		if !fields.Has(key) {
			return key, true
		}
	}
	return "", false
}

// isoDate converts a matched month-name date to yyyy-MM-dd.
func isoDate(month, day, year string) (string, bool) {
	num, ok := monthNumbers[strings.ToLower(month)[:3]]
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, num, d), true
}

// clockTime normalizes a matched time to "H:MM AM" form.
func clockTime(hour, minute, meridiem string) string {
	if minute == "" {
		minute = "00"
	}
	h := strings.TrimLeft(hour, "0")
	if h == "" {
		h = "0"
	}
	return fmt.Sprintf("%s:%s %s", h, minute, strings.ToUpper(meridiem))
}
