package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Reader streams a delimited export one row at a time, returning each row as
// a header→value map. The header row is normalized once up front: the UTF-8
// BOM some exports carry is stripped from every header, but spacing is left
// untouched because several source columns embed significant spaces
// ("IR Gravedad  (desc)", " Valor parcial ").
type Reader struct {
	file    *os.File
	csv     *csv.Reader
	headers []string
	rowNum  int64
}

func NewReader(path string, delimiter rune) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 64*1024)

	// Skip a UTF-8 BOM at the start of the stream if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	r := &Reader{file: file, csv: reader}
	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	headers, err := r.csv.Read()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	r.rowNum++

	for i, h := range headers {
		headers[i] = strings.TrimPrefix(h, "\ufeff")
	}
	r.headers = headers
	return nil
}

// Next returns the next data row keyed by header name. Fully empty rows are
// skipped. Returns io.EOF when the stream is exhausted.
func (r *Reader) Next() (map[string]string, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			return nil, err
		}
		r.rowNum++

		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		m := make(map[string]string, len(r.headers))
		for i, h := range r.headers {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		return m, nil
	}
}

// RowNum returns the current row number (1-based, header included).
func (r *Reader) RowNum() int64 {
	return r.rowNum
}

func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
