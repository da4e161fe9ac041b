package halgl

import "time"

// Default option values.
const (
	DefaultPipelineCacheLimit = 256
	DefaultWaitTimeout        = 5 * time.Second
	DefaultSurfaceWidth       = 640
	DefaultSurfaceHeight      = 480
)

type options struct {
	pipelineCacheLimit int
	waitTimeout        time.Duration
	surfaceWidth       int
	surfaceHeight      int
}

func defaultOptions() options {
	return options{
		pipelineCacheLimit: DefaultPipelineCacheLimit,
		waitTimeout:        DefaultWaitTimeout,
		surfaceWidth:       DefaultSurfaceWidth,
		surfaceHeight:      DefaultSurfaceHeight,
	}
}

// Option configures a Context.
type Option func(*options)

// WithPipelineCacheLimit sets how many hal render pipelines are kept before
// the least recently used quarter is released. Zero keeps all of them.
func WithPipelineCacheLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.pipelineCacheLimit = n
		}
	}
}

// WithWaitTimeout sets how long Flush waits for a submission to finish.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithSurfaceSize sets the size of the default framebuffer.
func WithSurfaceSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.surfaceWidth, o.surfaceHeight = width, height
		}
	}
}
