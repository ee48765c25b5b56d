package upstream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// errReader fails after yielding its prefix, simulating a mid-stream
// upstream disconnect.
type errReader struct {
	r   io.Reader
	err error
}

func (e *errReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		return n, e.err
	}
	return n, err
}

func TestSSEStream_OrderPreserved(t *testing.T) {
	body := "data: c1\n\ndata: c2\n\ndata: c3\n\ndata: [DONE]\n\n"
	s := newSSEStream(io.NopCloser(strings.NewReader(body)))

	var got []string
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(chunk))
	}

	want := []string{"c1", "c2", "c3"}
	if len(got) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSSEStream_SkipsNonDataLines(t *testing.T) {
	body := ": keepalive comment\n\nevent: message\ndata: c1\n\ndata: [DONE]\n\n"
	s := newSSEStream(io.NopCloser(strings.NewReader(body)))

	chunk, err := s.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(chunk) != "c1" {
		t.Errorf("chunk = %q, want %q", chunk, "c1")
	}

	if _, err := s.Next(); err != io.EOF {
		t.Errorf("expected EOF after [DONE], got %v", err)
	}
}

func TestSSEStream_EOFWithoutDone(t *testing.T) {
	// Connection closed cleanly without the [DONE] sentinel.
	s := newSSEStream(io.NopCloser(strings.NewReader("data: c1\n\n")))

	if _, err := s.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Errorf("expected EOF at end of body, got %v", err)
	}
	// Terminal: stays EOF.
	if _, err := s.Next(); err != io.EOF {
		t.Errorf("expected EOF on subsequent reads, got %v", err)
	}
}

func TestSSEStream_MidStreamFailure(t *testing.T) {
	wantErr := errors.New("connection reset")
	s := newSSEStream(io.NopCloser(&errReader{
		r:   strings.NewReader("data: c1\n\n"),
		err: wantErr,
	}))

	chunk, err := s.Next()
	if err != nil {
		t.Fatalf("unexpected error before failure: %v", err)
	}
	if string(chunk) != "c1" {
		t.Errorf("chunk = %q, want %q", chunk, "c1")
	}

	// The failure surfaces as a terminal error; already-read chunks stand.
	if _, err := s.Next(); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}

func TestSSEStream_ChunkIsStable(t *testing.T) {
	// The returned slice must not alias the scanner's reusable buffer.
	body := "data: first\n\ndata: second\n\ndata: [DONE]\n\n"
	s := newSSEStream(io.NopCloser(strings.NewReader(body)))

	first, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}

	if string(first) != "first" {
		t.Errorf("first chunk mutated after subsequent read: %q", first)
	}
}
