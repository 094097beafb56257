package publisher

import (
	"errors"
	"io"
	"testing"
)

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "status and body", err: &Error{StatusCode: 401, Body: `{"code":"rest_cannot_create"}`}, want: `HTTP 401: {"code":"rest_cannot_create"}`},
		{name: "status only", err: &Error{StatusCode: 502}, want: "HTTP 502"},
		{name: "wrapped", err: &Error{Err: io.ErrUnexpectedEOF}, want: "unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	if !errors.Is(&Error{Err: io.ErrUnexpectedEOF}, io.ErrUnexpectedEOF) {
		t.Error("Error should unwrap to its cause")
	}
}
