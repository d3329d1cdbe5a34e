package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks a group of simulation runs.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	Failed     uint64    `json:"failed"`
	InProgress uint64    `json:"in_progress"`
}

// Start marks one run as started.
func (b *ProgressBar) Start() {
	b.Lock()
	defer b.Unlock()

	b.InProgress++
}

// Finish moves one run from in progress to finished or failed.
func (b *ProgressBar) Finish(err error) {
	b.Lock()
	defer b.Unlock()

	b.InProgress--

	if err != nil {
		b.Failed++
		return
	}

	b.Finished++
}

// snapshot copies the bar under its lock.
func (b *ProgressBar) snapshot() progressBarRsp {
	b.Lock()
	defer b.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		Failed:     b.Failed,
		InProgress: b.InProgress,
	}
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	Failed     uint64    `json:"failed"`
	InProgress uint64    `json:"in_progress"`
}
