package generator

// Error is returned by Generate for any failure: a provider error or a
// *ParseError.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// ParseError reports model output that holds no JSON object.
type ParseError struct {
	// Raw is the output after fence stripping.
	Raw string
}

func (e *ParseError) Error() string { return "Failed to parse JSON response" }
