package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxJobs bounds the number of retained jobs; the oldest are evicted first.
// Zero or negative keeps every job.
func WithMaxJobs(n int) Option {
	return func(s *MemoryStore) {
		s.maxJobs = n
	}
}
