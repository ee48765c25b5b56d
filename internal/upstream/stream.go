package upstream

import (
	"bufio"
	"bytes"
	"io"
)

// Stream is a lazy, finite, non-restartable sequence of response chunks.
// Next returns chunks strictly in arrival order; after the upstream signals
// completion it returns io.EOF. A mid-stream failure surfaces as a terminal
// error from Next; the stream cannot be rewound or resumed, so a caller
// wanting a retry must issue a brand-new call.
type Stream interface {
	// Next returns the next chunk payload, io.EOF at end of stream, or a
	// terminal error if the upstream connection failed mid-stream.
	Next() ([]byte, error)

	// Close releases the upstream connection. Safe to call at any point;
	// pending reads fail after Close.
	Close() error
}

// sseStream reads Server-Sent Events from an upstream response body and
// yields the payload of each "data:" line.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

var (
	ssePrefix = []byte("data: ")
	sseDone   = []byte("[DONE]")
)

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	// Larger buffer for potentially large chunks
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 256*1024)

	return &sseStream{
		body:    body,
		scanner: scanner,
	}
}

// Next advances to the next data line. Empty lines and SSE comments are
// skipped; the [DONE] sentinel terminates the stream.
func (s *sseStream) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if !bytes.HasPrefix(line, ssePrefix) {
			continue
		}

		data := bytes.TrimPrefix(line, ssePrefix)
		if bytes.Equal(data, sseDone) {
			s.done = true
			return nil, io.EOF
		}

		// Copy out: the scanner reuses its buffer on the next Scan.
		chunk := make([]byte, len(data))
		copy(chunk, data)
		return chunk, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close releases the upstream connection.
func (s *sseStream) Close() error {
	s.done = true
	return s.body.Close()
}
