// Package keygen produces object keys for uploads.
package keygen

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Random returns a version 4 UUID (122 random bits) followed by ext verbatim.
func Random(ext string) string {
	return uuid.NewString() + ext
}

// Timestamped returns "<unix millis>-<filename>". Only the last path element
// of filename is kept, so a client-supplied path never reaches the key.
//
// Two uploads of the same filename within one millisecond get the same key
// and the later write wins.
func Timestamped(t time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		name = "file"
	}
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + name
}
