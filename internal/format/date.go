package format

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"inventoritoko/internal/models"
)

// Sentinel strings shown instead of a date.
const (
	DateUnavailable = "Tanggal Tidak Tersedia"
	DateBadFormat   = "Format Tanggal Salah"
)

var (
	// ErrDateUnavailable is returned for a missing or empty timestamp.
	ErrDateUnavailable = errors.New("date unavailable")
	// ErrDateFormat is returned when no known layout matches.
	ErrDateFormat = errors.New("unrecognized date format")
)

// DateFormatError lists the layouts that were tried for an unparseable value.
type DateFormatError struct {
	Value   string
	Layouts []string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("date %q matches none of [%s]", e.Value, strings.Join(e.Layouts, ", "))
}

func (e *DateFormatError) Unwrap() error { return ErrDateFormat }

// DateLayout is one accepted input format. A nil Location means the
// formatter's local zone.
type DateLayout struct {
	Name     string
	Layout   string
	Location *time.Location
}

// Input layouts, tried in order.
const (
	LayoutISOMillisUTC = "2006-01-02T15:04:05.000Z"
	LayoutSQL          = "2006-01-02 15:04:05"
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// DateFormatter parses API timestamps against an ordered list of strict
// layouts and renders them as "02 Januari 2006, 15:04" in a display zone.
type DateFormatter struct {
	layouts []DateLayout
	local   *time.Location
}

// NewDateFormatter builds the default chain: ISO-8601 with milliseconds in
// UTC, then SQL datetime in local. local also serves as the display zone.
func NewDateFormatter(local *time.Location) *DateFormatter {
	if local == nil {
		local = time.Local
	}
	return &DateFormatter{
		layouts: []DateLayout{
			{Name: "iso-utc", Layout: LayoutISOMillisUTC, Location: time.UTC},
			{Name: "sql-local", Layout: LayoutSQL},
		},
		local: local,
	}
}

// WithLayouts replaces the layout chain.
func (f *DateFormatter) WithLayouts(layouts ...DateLayout) *DateFormatter {
	return &DateFormatter{layouts: append([]DateLayout(nil), layouts...), local: f.local}
}

// Location is the display zone.
func (f *DateFormatter) Location() *time.Location { return f.local }

// Parse returns the instant raw denotes. Every layout must consume the whole
// string; a partial match falls through to the next layout.
func (f *DateFormatter) Parse(raw models.NullString) (time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return time.Time{}, ErrDateUnavailable
	}
	tried := make([]string, 0, len(f.layouts))
	for _, l := range f.layouts {
		loc := l.Location
		if loc == nil {
			loc = f.local
		}
		t, err := time.ParseInLocation(l.Layout, raw.String, loc)
		// time.Parse accepts fractional seconds the layout does not name; the
		// round trip rejects them.
		if err == nil && t.Format(l.Layout) == raw.String {
			return t, nil
		}
		tried = append(tried, l.Name)
	}
	return time.Time{}, &DateFormatError{Value: raw.String, Layouts: tried}
}

// Format renders raw for display, or one of the sentinel strings.
func (f *DateFormatter) Format(raw models.NullString) string {
	t, err := f.Parse(raw)
	switch {
	case errors.Is(err, ErrDateUnavailable):
		return DateUnavailable
	case err != nil:
		return DateBadFormat
	}
	return f.Render(t)
}

// Render formats t in the display zone.
func (f *DateFormatter) Render(t time.Time) string {
	t = t.In(f.local)
	return fmt.Sprintf("%02d %s %d, %02d:%02d",
		t.Day(), indonesianMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// FormatDate formats raw in the process-local zone.
func FormatDate(raw models.NullString) string {
	return NewDateFormatter(time.Local).Format(raw)
}
