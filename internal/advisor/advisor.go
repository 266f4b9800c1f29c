package advisor

import (
	"context"
)

// Advisor rates a password surrogate and answers with free text.
type Advisor interface {
	Advise(ctx context.Context, surrogate string) (string, error)
}

// AdviseAsync builds a surrogate of password and asks a for advice on a new
// goroutine. done, if not nil, receives the answer. AdviseAsync never
// blocks; vault operations must not wait on the advisor.
func AdviseAsync(ctx context.Context, a Advisor, password string, done func(string, error)) {
	surrogate, err := Surrogate(password)
	if err != nil {
		if done != nil {
			go done("", err)
		}
		return
	}

	go func() {
		answer, err := a.Advise(ctx, surrogate)
		if done != nil {
			done(answer, err)
		}
	}()
}
