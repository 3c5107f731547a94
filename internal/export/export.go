// Package export renders task lists as downloadable documents.
package export

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"worklog/internal/domain"
	apperrors "worklog/internal/errors"
)

// DateLayout is how task dates appear in every format
const DateLayout = "2006-01-02"

// DefaultColumnWidth is the spreadsheet column width
const DefaultColumnWidth = 25

// Header is the column header row shared by the tabular formats
var Header = []string{"Date", "Description", "Time Spent (mins)"}

// Options tunes rendering. Zero values fall back to local time and
// DefaultColumnWidth.
type Options struct {
	Location    *time.Location
	ColumnWidth float64
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) columnWidth() float64 {
	if o.ColumnWidth <= 0 {
		return DefaultColumnWidth
	}
	return o.ColumnWidth
}

// WriteFunc renders tasks, in the given order, to w
type WriteFunc func(w io.Writer, tasks []domain.Task, opts Options) error

// Format describes one export format
type Format struct {
	Name        string
	Filename    string
	ContentType string
	Write       WriteFunc
}

var formats = map[string]Format{
	"text": {
		Name:        "text",
		Filename:    "tasks.txt",
		ContentType: "text/plain; charset=utf-8",
		Write:       WriteText,
	},
	"xlsx": {
		Name:        "xlsx",
		Filename:    "tasks.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Write:       WriteXLSX,
	},
	"csv": {
		Name:        "csv",
		Filename:    "tasks.csv",
		ContentType: "text/csv; charset=utf-8",
		Write:       WriteCSV,
	},
	"pdf": {
		Name:        "pdf",
		Filename:    "tasks.pdf",
		ContentType: "application/pdf",
		Write:       WritePDF,
	},
}

var aliases = map[string]string{
	"txt":   "text",
	"excel": "xlsx",
}

// Lookup finds a format by name or alias, case-insensitively
func Lookup(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	format, ok := formats[key]
	if !ok {
		return Format{}, apperrors.NewInvalidInputError("format", name, "supported formats are "+strings.Join(Names(), ", "))
	}
	return format, nil
}

// Names lists the canonical format names
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// record converts a task into the cells of one tabular row
func record(task domain.Task, loc *time.Location) []string {
	return []string{
		task.CreatedAt.In(loc).Format(DateLayout),
		task.Description,
		strconv.Itoa(task.Minutes),
	}
}
