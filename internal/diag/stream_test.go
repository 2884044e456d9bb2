package diag

import (
	"reflect"
	"testing"
)

func TestAppendSplitsLines(t *testing.T) {
	var s Stream
	lines := s.Append([]byte("boot ok\nready\n"))
	want := []string{"boot ok", "ready"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestAppendHoldsPartialAcrossCalls(t *testing.T) {
	var s Stream
	if lines := s.Append([]byte("hel")); len(lines) != 0 {
		t.Fatalf("partial emitted early: %q", lines)
	}
	if s.Pending() != "hel" {
		t.Fatalf("pending = %q", s.Pending())
	}
	lines := s.Append([]byte("lo\nwor"))
	if len(lines) != 1 || lines[0] != "hello" {
		t.Fatalf("lines = %q", lines)
	}
	if s.Pending() != "wor" {
		t.Errorf("pending = %q", s.Pending())
	}
}

func TestAppendSanitizes(t *testing.T) {
	var s Stream
	lines := s.Append([]byte("a\r\tb\n"))
	if len(lines) != 1 || lines[0] != "a    b" {
		t.Errorf("lines = %q", lines)
	}
}

func TestAppendReplacesInvalidUTF8(t *testing.T) {
	var s Stream
	lines := s.Append([]byte{'o', 'k', 0xFF, 0xFE, '\n'})
	if len(lines) != 1 || lines[0] != "ok��" {
		t.Errorf("lines = %q", lines)
	}
}

func TestFlush(t *testing.T) {
	var s Stream
	if _, ok := s.Flush(); ok {
		t.Error("empty stream flushed a line")
	}
	s.Append([]byte("tail"))
	line, ok := s.Flush()
	if !ok || line != "tail" {
		t.Errorf("flush = %q %v", line, ok)
	}
	if _, ok := s.Flush(); ok {
		t.Error("flush did not clear the partial line")
	}
}
