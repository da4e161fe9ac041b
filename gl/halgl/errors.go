package halgl

import "errors"

var (
	// ErrNilDevice is returned when a constructor gets no hal device or queue.
	ErrNilDevice = errors.New("halgl: nil hal device or queue")

	// ErrNoHalProvider is returned by NewFromProvider when the provider does
	// not expose hal objects.
	ErrNoHalProvider = errors.New("halgl: provider does not expose hal device and queue")

	// ErrShaderCompile wraps WGSL parse, reflection and SPIR-V generation
	// failures.
	ErrShaderCompile = errors.New("halgl: shader compilation failed")

	// ErrUnsupported is recorded for GL state or data the hal backend
	// cannot express.
	ErrUnsupported = errors.New("halgl: unsupported")

	// ErrInvalidObject is recorded when a call names an unknown or
	// incomplete object.
	ErrInvalidObject = errors.New("halgl: invalid object")

	// ErrWaitTimeout is recorded when the GPU does not finish a submission
	// within the wait timeout.
	ErrWaitTimeout = errors.New("halgl: timed out waiting for the GPU")
)
