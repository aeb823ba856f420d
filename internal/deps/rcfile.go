package deps

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/errors"
)

// rcMarker precedes every line gln-setup appends to a shell rc file.
const rcMarker = "# >>> added by gln-setup"

// EnsureLine appends line to the file at path unless an identical line is
// already there. It reports whether the file changed. A missing file is
// created.
func EnsureLine(path, line string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.WrapWithCode(err, errors.ErrDeps,
			"Couldn't read "+path, "Check the file's permissions")
	}

	for _, existing := range strings.Split(string(data), "\n") {
		if strings.TrimRight(existing, "\r") == line {
			return false, nil
		}
	}

	var buf bytes.Buffer
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString("\n" + rcMarker + "\n" + line + "\n")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrDeps,
			"Couldn't create "+filepath.Dir(path), "Check the directory's permissions")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrDeps,
			"Couldn't open "+path, "Check the file's permissions")
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrDeps,
			"Couldn't write "+path, "Add this line yourself: "+line)
	}
	return true, nil
}
