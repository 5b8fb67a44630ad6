/**
 * @description
 * This package owns account number allocation and IBAN derivation. Account
 * numbers are seven-digit integers drawn at random and pre-checked against
 * the repository; the database's unique constraint on account_number remains
 * the final arbiter under concurrency, with the create handler regenerating
 * on conflict.
 *
 * @notes
 * - Each Generator carries its own rand source so there is no process-global
 *   generator to contend on, and tests can seed it deterministically.
 */
package numbering

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/parabank/account-service/internal/domain"
)

const (
	minAccountNumber = 1000000
	maxAccountNumber = 9999999

	// Fixed bank constants for the IBAN-like identifier. The branch block and
	// check suffix are institution-wide and never vary per account.
	ibanCountryPrefix = "TR"
	ibanBranchBlock   = "97925786"
	ibanCheckSuffix   = "01"

	defaultMaxAttempts = 5
)

// NumberChecker answers whether an account number is already taken. The
// PostgresAccountRepository satisfies this.
type NumberChecker interface {
	AccountNumberExists(ctx context.Context, number int64) (bool, error)
}

// Generator allocates unique account numbers.
type Generator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	checker     NumberChecker
	maxAttempts int
}

// NewGenerator creates a Generator with a time-seeded source.
func NewGenerator(checker NumberChecker) *Generator {
	return NewSeededGenerator(checker, time.Now().UnixNano())
}

// NewSeededGenerator creates a Generator with a fixed seed, for deterministic
// tests.
func NewSeededGenerator(checker NumberChecker, seed int64) *Generator {
	return &Generator{
		rng:         rand.New(rand.NewSource(seed)),
		checker:     checker,
		maxAttempts: defaultMaxAttempts,
	}
}

// Next draws candidate numbers until one is not already taken, up to a
// bounded attempt count. Exhausting the attempts yields a conflict error.
func (g *Generator) Next(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		g.mu.Lock()
		candidate := minAccountNumber + g.rng.Int63n(maxAccountNumber-minAccountNumber+1)
		g.mu.Unlock()

		taken, err := g.checker.AccountNumberExists(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("checking account number candidate: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return 0, domain.NewError(domain.ErrConflict, "could not allocate a unique account number")
}

// DeriveIBAN formats the IBAN-like identifier for an account number. It is a
// pure function: the same number always yields the same string.
func DeriveIBAN(accountNumber int64) string {
	return fmt.Sprintf("%s%d%s%d%s", ibanCountryPrefix, accountNumber, ibanBranchBlock, accountNumber, ibanCheckSuffix)
}
