package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM lets spreadsheet apps detect UTF-8 when opening the file directly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes the header line followed by every row.
func CSV(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("failed to write csv rows: %w", err)
	}

	return buf.Bytes(), nil
}
