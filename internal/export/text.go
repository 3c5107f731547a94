package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"worklog/internal/domain"
)

// lineBreaks folds multi-line descriptions onto the task's line
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// WriteText writes one line per task: "<date> - <description> (<n> mins)".
// Line breaks inside a description become spaces. No tasks produce no output.
func WriteText(w io.Writer, tasks []domain.Task, opts Options) error {
	loc := opts.location()
	bw := bufio.NewWriter(w)
	for _, task := range tasks {
		description := lineBreaks.Replace(task.Description)
		if _, err := fmt.Fprintf(bw, "%s - %s (%d mins)\n", task.CreatedAt.In(loc).Format(DateLayout), description, task.Minutes); err != nil {
			return err
		}
	}
	return bw.Flush()
}
