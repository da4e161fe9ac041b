package gfx

// Option configures a Device during creation.
//
// Example:
//
//	// Defaults: 64 KiB uniform pages, validation on
//	dev := gfx.NewDevice(ctx)
//
//	// Smaller uniform pages and warm pass pools
//	dev := gfx.NewDevice(ctx,
//	    gfx.WithUniformPageSize(16<<10),
//	    gfx.WithRenderPassPoolSize(4),
//	)
type Option func(*deviceOptions)

// deviceOptions holds optional configuration for Device creation.
type deviceOptions struct {
	uniformPageSize    int
	renderPassPoolSize int
	uploadPassPoolSize int
	validation         bool
}

// DefaultUniformPageSize is the byte size of a uniform buffer page.
const DefaultUniformPageSize = 0x10000

// defaultOptions returns the default device options.
func defaultOptions() deviceOptions {
	return deviceOptions{
		uniformPageSize: DefaultUniformPageSize,
		validation:      true,
	}
}

// WithUniformPageSize sets the byte size of uniform buffer pages.
// The size must be a positive multiple of 4; it is clamped to the backend's
// maximum uniform block size when that is smaller.
func WithUniformPageSize(bytes int) Option {
	return func(o *deviceOptions) {
		if bytes > 0 && bytes%4 == 0 {
			o.uniformPageSize = bytes
		}
	}
}

// WithRenderPassPoolSize pre-allocates n render passes.
func WithRenderPassPoolSize(n int) Option {
	return func(o *deviceOptions) {
		o.renderPassPoolSize = n
	}
}

// WithUploadPassPoolSize pre-allocates n upload passes.
func WithUploadPassPoolSize(n int) Option {
	return func(o *deviceOptions) {
		o.uploadPassPoolSize = n
	}
}

// WithValidation enables or disables use-after-destroy checks during pass
// execution. Validation is on by default.
func WithValidation(enabled bool) Option {
	return func(o *deviceOptions) {
		o.validation = enabled
	}
}
