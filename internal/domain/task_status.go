package domain

// TaskStatus is a classifier entry referenced by tasks. Reference data,
// seeded at migration time and exposed read-only.
type TaskStatus struct {
	ID   int64
	Name string
}
