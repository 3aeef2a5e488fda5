package pdfinfo

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Counter reports PDF page counts from raw bytes, so the client can show a
// page count immediately instead of waiting for remote processing.
type Counter struct{}

func NewCounter() *Counter {
	return &Counter{}
}

func (Counter) PageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	pages := reader.NumPage()
	if pages <= 0 {
		return 0, fmt.Errorf("pdf reports %d pages", pages)
	}
	return pages, nil
}
