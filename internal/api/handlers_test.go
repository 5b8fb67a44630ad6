package api

import (
	"net/http"
	"testing"

	"github.com/parabank/account-service/internal/domain"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{kind: string(domain.ErrValidation), want: http.StatusBadRequest},
		{kind: string(domain.ErrNotFound), want: http.StatusNotFound},
		{kind: string(domain.ErrConflict), want: http.StatusConflict},
		{kind: string(domain.ErrPersistence), want: http.StatusInternalServerError},
		{kind: string(domain.ErrInternal), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := statusForKind(tt.kind); got != tt.want {
				t.Fatalf("expected status %d for kind %q, got %d", tt.want, tt.kind, got)
			}
		})
	}
}
