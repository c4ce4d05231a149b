package model

import "time"

// JobStatus tracks a forecast job through the worker pipeline.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is a request to forecast one or more leagues.
type Job struct {
	ID          string
	RequestID   string   // client supplied idempotency key, optional
	Leagues     []string // empty means every loaded league
	Simulations int      // 0 means the configured default
	Model       string   // empty means the configured default
	Seed        uint64
	SubmittedAt time.Time
}

// JobResult is the stored state of a Job.
type JobResult struct {
	Job        Job
	Status     JobStatus
	Metrics    []LeagueMetrics
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
