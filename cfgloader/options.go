package cfgloader

// Options holds configuration options for MustLoad.
type Options struct {
	// Silent disables printing the loaded config.
	Silent bool

	// Dir is the directory holding the per-environment yaml files. Default is ./config.
	Dir string
}

// Option is a functional option for MustLoad.
type Option func(*Options)

// WithSilent disables printing the loaded config.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}

// WithDir changes the directory the environment file is read from.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}
