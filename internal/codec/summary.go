package codec

import (
	"fmt"
	"io"
	"time"
)

// SummaryTitle is the first line of every summary report.
const SummaryTitle = "--- Fyora Admin Summary Report ---"

// SummaryDateLayout formats the report timestamp.
const SummaryDateLayout = "2006-01-02 15:04:05"

// Summary carries the figures written to a summary report
type Summary struct {
	GeneratedAt  time.Time
	Users        int
	ProgressLogs int
}

// SummaryWriter renders the plain-text summary report
type SummaryWriter struct{}

// NewSummaryWriter creates a new summary writer
func NewSummaryWriter() *SummaryWriter {
	return &SummaryWriter{}
}

// Format returns the writer format identifier
func (sw *SummaryWriter) Format() string {
	return "text"
}

// Write renders the four-line report to w
func (sw *SummaryWriter) Write(s Summary, w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\nReport Date: %s\nTotal Users: %d\nTotal Progress Logs: %d\n",
		SummaryTitle,
		s.GeneratedAt.Format(SummaryDateLayout),
		s.Users,
		s.ProgressLogs,
	)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
