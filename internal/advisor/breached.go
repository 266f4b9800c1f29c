package advisor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// Breached reports whether password appears as a line of the wordlist read
// from r (rockyou-style, one password per line). Lines are compared as raw
// bytes after trimming surrounding whitespace.
func Breached(ctx context.Context, r io.Reader, password string) (bool, error) {
	want := []byte(password)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)

	for n := 0; sc.Scan(); n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		if bytes.Equal(bytes.TrimSpace(sc.Bytes()), want) {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return false, nil
}

// BreachedFile runs Breached over the wordlist at path.
func BreachedFile(ctx context.Context, path, password string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()
	return Breached(ctx, f, password)
}
