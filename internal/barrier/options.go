package barrier

// Option configures a chain.
type Option func(*chainConfig)

type chainConfig struct {
	observers observers
	isolate   bool
}

// WithObservers attaches trial observers, called in the given order.
func WithObservers(obs ...Observer) Option {
	return func(c *chainConfig) {
		for _, o := range obs {
			if o != nil {
				c.observers = append(c.observers, o)
			}
		}
	}
}

// WithIsolation makes an admission chain snapshot the instructions and
// properties before each trial and restore them when that trial rejects.
// Suspension and denial chains ignore it.
func WithIsolation() Option {
	return func(c *chainConfig) {
		c.isolate = true
	}
}

func buildConfig(opts []Option) chainConfig {
	var cfg chainConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
