package batch_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/textkernel/tx-go/pkg/batch"
	"github.com/textkernel/tx-go/pkg/faults"
)

// writeTree creates files (relative paths, "/"-separated) under a temp dir.
func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content of "+f), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestEnumerate(t *testing.T) {
	root := writeTree(t, "b.pdf", "a.docx", "sub/c.pdf", "sub/deeper/d.txt")

	tests := []struct {
		name    string
		recurse bool
		want    []string
	}{
		{
			name:    "top level only",
			recurse: false,
			want:    []string{"a.docx", "b.pdf"},
		},
		{
			name:    "recursive in lexical order",
			recurse: true,
			want:    []string{"a.docx", "b.pdf", "sub/c.pdf", "sub/deeper/d.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := batch.Enumerate(root, tt.recurse)
			if err != nil {
				t.Fatalf("Enumerate() error = %v", err)
			}

			got := relative(t, root, files)
			if len(got) != len(tt.want) {
				t.Fatalf("Enumerate() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Enumerate()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEnumerateErrors(t *testing.T) {
	root := writeTree(t, "a.pdf")

	tests := []struct {
		name    string
		root    string
		wantErr error
	}{
		{"blank root", "  ", faults.ErrInvalidArgument},
		{"missing root", filepath.Join(root, "missing"), faults.ErrNotFound},
		{"root is a file", filepath.Join(root, "a.pdf"), faults.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := batch.Enumerate(tt.root, true)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Enumerate(%q) error = %v, want %v", tt.root, err, tt.wantErr)
			}
		})
	}
}

func TestEnumerateSymlinks(t *testing.T) {
	target := writeTree(t, "a.pdf", "b.pdf")
	outside := writeTree(t, "cv.pdf")

	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.Symlink(target, docs); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "cv.pdf"), filepath.Join(target, "cv.pdf")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(target, "missing.pdf"), filepath.Join(target, "dangling.pdf")); err != nil {
		t.Fatal(err)
	}

	want := []string{"a.pdf", "b.pdf", "cv.pdf"}

	for _, recurse := range []bool{false, true} {
		t.Run(fmt.Sprintf("recurse=%v", recurse), func(t *testing.T) {
			files, err := batch.Enumerate(docs, recurse)
			if err != nil {
				t.Fatalf("Enumerate() error = %v", err)
			}

			got := relative(t, docs, files)
			if len(got) != len(want) {
				t.Fatalf("Enumerate() = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("Enumerate()[%d] = %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}
