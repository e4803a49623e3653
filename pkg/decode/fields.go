package decode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingField is returned when a required column is absent or blank.
	ErrMissingField = errors.New("missing field")
	// ErrMalformedField is returned when a column cannot be parsed.
	ErrMalformedField = errors.New("malformed field")
	// ErrMalformedRecord is returned for a nil row, the placeholder a reader
	// leaves for a record it could not tokenize.
	ErrMalformedRecord = errors.New("malformed record")
)

// Row is one source record keyed by column name.
type Row map[string]string

// text returns the trimmed value of key and whether it is non-blank.
func (r Row) text(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Text returns the trimmed value of key or ErrMissingField.
func (r Row) Text(key string) (string, error) {
	v, ok := r.text(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v, nil
}

// Float parses key as a float.
func (r Row) Float(key string) (float64, error) {
	v, err := r.Text(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedField, key, v)
	}
	return f, nil
}

// FloatOr parses key as a float, returning def when the column is blank.
func (r Row) FloatOr(key string, def float64) (float64, error) {
	if _, ok := r.text(key); !ok {
		return def, nil
	}
	return r.Float(key)
}

// ID parses key as an integer id. ArcGIS exports integer columns as "12" or
// "12.0"; both are accepted, fractional or out of range values are not.
func (r Row) ID(key string) (int64, error) {
	v, err := r.Text(key)
	if err != nil {
		return 0, err
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedField, key, v)
	}
	return int64(f), nil
}

// IDOr parses key as an integer id, returning def when the column is blank.
func (r Row) IDOr(key string, def int64) (int64, error) {
	if _, ok := r.text(key); !ok {
		return def, nil
	}
	return r.ID(key)
}
