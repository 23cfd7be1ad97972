package vgcbuf

import (
	"io"
	"testing"
	"unsafe"

	"github.com/voidvoxel/gc/gc"
)

func TestBufferWriteRead(t *testing.T) {
	var anchor int
	c := gc.New(unsafe.Pointer(&anchor))
	defer c.Stop()

	buf, err := New(c, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n, err := buf.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write = %d, %v", n, err)
	}

	got := make([]byte, 5)
	n, err = buf.Read(got)
	if err != nil || n != 5 || string(got) != "hello" {
		t.Fatalf("Read = %d, %v, %q", n, err, got)
	}

	_, err = buf.Read(got)
	if err != io.EOF {
		t.Fatalf("expected io.EOF after drain, got %v", err)
	}
}

func TestBufferWriteBeyondCapacity(t *testing.T) {
	var anchor int
	c := gc.New(unsafe.Pointer(&anchor))
	defer c.Stop()

	buf, err := New(c, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n, err := buf.Write([]byte("toolong"))
	if err != io.ErrShortWrite {
		t.Fatalf("expected io.ErrShortWrite, got %v", err)
	}
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
}
