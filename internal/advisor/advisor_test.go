package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type advisorFunc func(ctx context.Context, surrogate string) (string, error)

func (f advisorFunc) Advise(ctx context.Context, s string) (string, error) { return f(ctx, s) }

func TestAdviseAsync_DoesNotBlockAndNeverSendsSecret(t *testing.T) {
	release := make(chan struct{})
	sent := make(chan string, 1)
	a := advisorFunc(func(ctx context.Context, s string) (string, error) {
		sent <- s
		<-release
		return "fine", nil
	})

	results := make(chan string, 1)
	start := time.Now()
	AdviseAsync(context.Background(), a, "Str0ng!Passw0rd#", func(answer string, err error) {
		assert.NoError(t, err)
		results <- answer
	})
	assert.Less(t, time.Since(start), time.Second)

	s := <-sent
	assert.NotEqual(t, "Str0ng!Passw0rd#", s)
	assert.Len(t, s, len("Str0ng!Passw0rd#"))

	close(release)
	select {
	case answer := <-results:
		assert.Equal(t, "fine", answer)
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestAdviseAsync_ErrorReachesCallback(t *testing.T) {
	a := advisorFunc(func(context.Context, string) (string, error) { return "", errors.New("offline") })

	errs := make(chan error, 1)
	AdviseAsync(context.Background(), a, "pw", func(_ string, err error) { errs <- err })

	select {
	case err := <-errs:
		assert.EqualError(t, err, "offline")
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestAdviseAsync_NilCallback(t *testing.T) {
	called := make(chan struct{})
	a := advisorFunc(func(context.Context, string) (string, error) {
		close(called)
		return "", nil
	})
	AdviseAsync(context.Background(), a, "pw", nil)
	<-called
}

func TestBreached(t *testing.T) {
	list := "123456\npassword\n  iloveyou \r\nStr0ng\n"
	ctx := context.Background()

	hit, err := Breached(ctx, strings.NewReader(list), "iloveyou")
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = Breached(ctx, strings.NewReader(list), "Str0ng!Passw0rd#")
	require.NoError(t, err)
	assert.False(t, hit)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Breached(canceled, strings.NewReader(list), "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBreachedFile_Missing(t *testing.T) {
	_, err := BreachedFile(context.Background(), "/nonexistent/rockyou.txt", "x")
	assert.Error(t, err)
}
