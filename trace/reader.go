package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Reader decodes frames written by Writer.
type Reader struct {
	closer io.Closer
	dec    *zstd.Decoder
	sc     *bufio.Scanner
	line   int
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

func NewReader(src io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	return &Reader{dec: dec, sc: sc}, nil
}

// Next returns the next frame, or io.EOF at the end of the stream.
func (r *Reader) Next() (Frame, error) {
	for r.sc.Scan() {
		r.line++
		line := r.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(line, &f); err != nil {
			return Frame{}, fmt.Errorf("trace: line %d: %w", r.line, err)
		}
		return f, nil
	}
	if err := r.sc.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]Frame, error) {
	var out []Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

func (r *Reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
		r.dec = nil
	}
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}
