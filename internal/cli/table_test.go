package cli

import (
	"bytes"
	"testing"
)

func TestWriteTableAlignsWithANSI(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"NAME", "SIZE", "FAVORITE"}
	rows := [][]string{
		{"twill", "4x4", "yes"},
		{"\x1b[33m" + "rib" + "\x1b[0m", "12x2", "no"},
	}

	if err := writeTable(&buf, headers, rows); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}

	got := stripANSI(buf.String())
	want := "" +
		"NAME   SIZE  FAVORITE\n" +
		"twill  4x4   yes\n" +
		"rib    12x2  no\n"

	if got != want {
		t.Fatalf("unexpected table output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestWriteTableWideRunes(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{
		{"abcd", "a"},
		{"日本", "b"},
	}

	if err := writeTable(&buf, nil, rows); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}

	want := "" +
		"abcd  a\n" +
		"日本  b\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected table output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatYesNo(t *testing.T) {
	if got := formatYesNo(true); got != "yes" {
		t.Fatalf("formatYesNo(true) = %q", got)
	}
	if got := formatYesNo(false); got != "no" {
		t.Fatalf("formatYesNo(false) = %q", got)
	}
}

func TestWriteTableRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{
		{"a"},
		{"bb", "c", "d"},
	}

	if err := writeTable(&buf, []string{"X", "Y"}, rows); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}

	want := "" +
		"X   Y  \n" +
		"a      \n" +
		"bb  c  d\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected table output:\nwant:\n%q\ngot:\n%q", want, got)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, nil, nil); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
