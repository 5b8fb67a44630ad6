package numbering

import (
	"context"
	"errors"
	"testing"

	"github.com/parabank/account-service/internal/domain"
)

type scriptedChecker struct {
	taken  []bool
	calls  int
	failAt int
}

func (c *scriptedChecker) AccountNumberExists(ctx context.Context, number int64) (bool, error) {
	c.calls++
	if c.failAt > 0 && c.calls == c.failAt {
		return false, errors.New("connection reset")
	}
	if c.calls <= len(c.taken) {
		return c.taken[c.calls-1], nil
	}
	return false, nil
}

func TestDeriveIBANFormat(t *testing.T) {
	got := DeriveIBAN(1234567)
	want := "TR123456797925786123456701"
	if got != want {
		t.Fatalf("expected IBAN %q, got %q", want, got)
	}
}

func TestDeriveIBANIsPure(t *testing.T) {
	first := DeriveIBAN(4210573)
	second := DeriveIBAN(4210573)
	if first != second {
		t.Fatalf("expected identical output for same input, got %q and %q", first, second)
	}
	if DeriveIBAN(4210574) == first {
		t.Fatalf("expected different numbers to derive different IBANs")
	}
}

func TestNextReturnsSevenDigitNumber(t *testing.T) {
	gen := NewSeededGenerator(&scriptedChecker{}, 1)

	for i := 0; i < 100; i++ {
		number, err := gen.Next(context.Background())
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		if number < 1000000 || number > 9999999 {
			t.Fatalf("expected number in [1000000, 9999999], got %d", number)
		}
	}
}

func TestNextIsDeterministicWithSeed(t *testing.T) {
	first, err := NewSeededGenerator(&scriptedChecker{}, 42).Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	second, err := NewSeededGenerator(&scriptedChecker{}, 42).Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected same seed to yield same number, got %d and %d", first, second)
	}
}

func TestNextRetriesTakenNumbers(t *testing.T) {
	checker := &scriptedChecker{taken: []bool{true, true, false}}
	gen := NewSeededGenerator(checker, 7)

	number, err := gen.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if number == 0 {
		t.Fatalf("expected a number after retries")
	}
	if checker.calls != 3 {
		t.Fatalf("expected 3 candidate checks, got %d", checker.calls)
	}
}

func TestNextExhaustionIsConflict(t *testing.T) {
	checker := &scriptedChecker{taken: []bool{true, true, true, true, true}}
	gen := NewSeededGenerator(checker, 7)

	_, err := gen.Next(context.Background())
	if err == nil {
		t.Fatalf("expected error when every candidate is taken")
	}
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict kind, got %q", domain.KindOf(err))
	}
}

func TestNextSurfacesCheckerErrors(t *testing.T) {
	checker := &scriptedChecker{failAt: 1}
	gen := NewSeededGenerator(checker, 7)

	if _, err := gen.Next(context.Background()); err == nil {
		t.Fatalf("expected checker error to surface")
	}
}

func TestNextHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewSeededGenerator(&scriptedChecker{}, 7)
	if _, err := gen.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
