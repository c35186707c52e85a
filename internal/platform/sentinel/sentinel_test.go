package sentinel

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: report", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not owner", ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: pending -> completed", ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("%w: active application exists", ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: latitude out of range", ErrValidation), http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestPublicMessage_HidesInternalErrors(t *testing.T) {
	if got := PublicMessage(errors.New("pq: connection refused")); got != "internal error" {
		t.Fatalf("expected generic message, got %q", got)
	}
	err := fmt.Errorf("%w: animal is not available", ErrConflict)
	if got := PublicMessage(err); got != err.Error() {
		t.Fatalf("expected domain message, got %q", got)
	}
}
