package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestSizeTableAlignsNumbersAndPrintsFooter(t *testing.T) {
	var buf bytes.Buffer
	sizeTable{
		headers: []string{"File", "Size"},
		rows:    [][]string{{"a.jpg", "1"}, {"b.jpg", "22"}},
		footer:  []string{"Total", "23"},
		right:   []int{1},
	}.write(&buf)
	out := buf.String()

	if !strings.Contains(out, "│    1 │") {
		t.Errorf("size column not right-aligned:\n%s", out)
	}
	if !strings.Contains(out, "│ a.jpg │") {
		t.Errorf("name column should stay left-aligned:\n%s", out)
	}
	total := strings.Index(out, "Total")
	if total < 0 || total < strings.Index(out, "b.jpg") {
		t.Errorf("footer should follow the rows:\n%s", out)
	}
	if !strings.Contains(out, "│ File  │") {
		t.Errorf("header case should be kept:\n%s", out)
	}
}
