package db

import "time"

// Export statuses, in lifecycle order.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// Video represents a row in the videos table.
type Video struct {
	ID        int64
	Path      string
	Filename  string
	Extension string
	Duration  float64
	Filesize  int64
}

// Export represents a row in the exports table joined with its video path.
type Export struct {
	ID         int64
	VideoID    int64
	VideoPath  string
	Start      float64
	End        float64
	OutputPath string
	Status     string
	StartedAt  *time.Time
	FinishedAt *time.Time
	ErrorAt    *time.Time
	Filesize   int64
	Log        string
	CreatedAt  time.Time
}

// Length returns the exported range length in seconds.
func (e Export) Length() float64 {
	return e.End - e.Start
}
