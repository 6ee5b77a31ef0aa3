package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"datapulse/pkg/contracts/domain"
)

var (
	// ErrEmptyLine is the cause of a DecodeError for blank lines. Blank lines
	// count as malformed so that decoded + malformed always equals lines read.
	ErrEmptyLine = errors.New("empty line")

	// ErrNotObject is the cause of a DecodeError for valid JSON that is not an object
	ErrNotObject = errors.New("not a JSON object")
)

// DecodeError reports a line that could not be decoded into a Record
type DecodeError struct {
	Line int
	Err  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: decode failed: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("decode failed: %v", e.Err)
}

// Unwrap returns the underlying cause
func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeLine parses one line as a JSON object. Surrounding whitespace, including
// a trailing CR, is ignored. It never panics; any failure is a *DecodeError.
func DecodeLine(line []byte) (domain.Record, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Err: ErrEmptyLine}
	}

	var record map[string]any
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if record == nil {
		// a bare null decodes into a nil map without error
		return nil, &DecodeError{Err: ErrNotObject}
	}

	return domain.Record(record), nil
}
