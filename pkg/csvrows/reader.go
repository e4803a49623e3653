// Package csvrows reads CSV tables into rows keyed by header name.
package csvrows

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gridcase/csv2mgc/pkg/decode"
	"github.com/gridcase/csv2mgc/pkg/logging"
)

const bom = "\ufeff"

// ErrNoHeader is returned for an empty table.
var ErrNoHeader = errors.New("csv has no header row")

// Read parses r as a CSV table whose first record is the header and returns
// every following record as a row. Records shorter than the header leave the
// trailing columns absent; extra fields are ignored. Stray quotes are kept as
// field text. A record that still cannot be parsed is returned as a nil row,
// which decoding rejects, so only that record is lost.
func Read(ctx context.Context, r io.Reader) ([]decode.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, bom)
		}
		columns[i] = strings.TrimSpace(name)
	}

	var rows []decode.Row
	for {
		if len(rows)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			logging.WarnContext(ctx, "unparseable csv record", "line", perr.StartLine, "error", perr.Err)
			rows = append(rows, nil)
			continue
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}

		row := make(decode.Row, len(columns))
		for i, v := range record {
			if i >= len(columns) {
				break
			}
			if _, dup := row[columns[i]]; dup {
				continue
			}
			row[columns[i]] = v
		}
		rows = append(rows, row)
	}
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadFile reads the CSV table at path.
func ReadFile(ctx context.Context, path string) ([]decode.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
