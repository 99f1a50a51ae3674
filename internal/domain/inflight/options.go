package inflight

// Option applies a configuration option to the Guard.
type Option func(*guard)

// WithCapacity presizes the key table.
func WithCapacity(n int) Option {
	return func(g *guard) {
		if n > 0 {
			g.capacity = n
		}
	}
}
