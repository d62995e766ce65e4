package tempref

import (
	"github.com/joeycumines/logiface"
)

// Option configures a container, and may be passed to any of the
// constructors. Nil options are skipped gracefully.
type Option interface {
	apply(*containerOptions)
}

// containerOptions holds resolved configuration, shared by all variants.
type containerOptions struct {
	logger *logiface.Logger[logiface.Event]
}

type optionFunc func(*containerOptions)

func (x optionFunc) apply(opts *containerOptions) {
	x(opts)
}

// WithLogger configures structured logging for a container, e.g. poisoning
// events. The logger may be nil (the default), in which case logging is
// disabled; logiface loggers are nil-safe, so the disabled path has no
// configuration cost.
//
// The hot acquire/release path is never logged.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.logger = logger
	})
}

func resolveOptions(opts []Option) (cfg containerOptions) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&cfg)
	}
	return
}
