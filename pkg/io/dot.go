package io

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cgerrors "github.com/matzehuels/cmakegraph/pkg/errors"
)

// DependersSuffix marks the fragment listing the targets that depend on a
// target, rather than its dependencies.
const DependersSuffix = ".dependers"

// Fragment is a per-target DOT file written next to the base graph file.
type Fragment struct {
	Path      string
	Target    string
	Dependers bool // FILE.<target>.dependers rather than FILE.<target>
}

// ImportDOT reads the DOT file at path.
//
// It returns an error with code MISSING_INPUT_FILE if the file does not
// exist and INVALID_INPUT if path names a directory.
func ImportDOT(path string) (string, error) {
	if err := cgerrors.ValidatePath(path); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", cgerrors.Wrap(cgerrors.ErrCodeMissingInputFile, err, "input file %s does not exist", path)
	}
	if err != nil {
		return "", cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "stat %s", path)
	}
	if info.IsDir() {
		return "", cgerrors.New(cgerrors.ErrCodeInvalidInput, "input %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "read %s", path)
	}
	return string(data), nil
}

// Fragments lists the per-target fragments of the base file, sorted by path.
// It returns MISSING_INPUT_FILE if base itself does not exist.
func Fragments(base string) ([]Fragment, error) {
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeMissingInputFile, err, "input file %s does not exist", base)
	}

	matches, err := filepath.Glob(globEscape(base) + ".*")
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "list fragments of %s", base)
	}
	sort.Strings(matches)

	prefix := filepath.Base(base) + "."
	var frags []Fragment
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		target := strings.TrimPrefix(filepath.Base(m), prefix)
		// Skip our own temporary files and editor leftovers.
		if target == "" || strings.HasSuffix(target, ".tmp") || strings.HasSuffix(target, "~") {
			continue
		}
		f := Fragment{Path: m, Target: target}
		if t, ok := strings.CutSuffix(target, DependersSuffix); ok && t != "" {
			f.Target, f.Dependers = t, true
		}
		frags = append(frags, f)
	}
	return frags, nil
}

// globEscape escapes glob metacharacters in a literal path.
func globEscape(p string) string {
	var b strings.Builder
	for _, r := range p {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExportDOT writes text to path atomically. Parent directories are created
// as needed.
func ExportDOT(path, text string) error {
	if err := cgerrors.ValidatePath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
