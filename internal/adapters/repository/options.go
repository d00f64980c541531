package repository

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithMaxLimit caps the page size of Search and TopN.
func WithMaxLimit(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithDefaultLimit sets the page size used when a query asks for none.
func WithDefaultLimit(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}
