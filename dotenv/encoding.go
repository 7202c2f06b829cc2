package dotenv

import (
	"log/slog"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is the text encoding assumed for files when none is given.
const DefaultEncoding = "utf-8"

// encodingAlias maps encoding names that the WHATWG index does not resolve,
// or resolves differently, to the intended encoding.
var encodingAlias = map[string]encoding.Encoding{
	"latin1":  charmap.ISO8859_1,
	"binary":  charmap.ISO8859_1,
	"ucs2":    unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"ucs-2":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
}

// LookupEncoding returns the text encoding with the given name or label,
// for example "utf-8", "utf-16le", "latin1", or "shift_jis".
// Names are case-insensitive.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultEncoding
	}

	if enc, ok := encodingAlias[key]; ok {
		return enc, nil
	}

	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, ErrUnknownEncoding.Wrap(err).
			With(slog.String("encoding", name))
	}

	return enc, nil
}

// decodeText converts data from enc to a UTF-8 string with any leading byte
// order mark removed.
func decodeText(data []byte, enc encoding.Encoding) (string, error) {
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}

	return strings.TrimPrefix(string(text), "\uFEFF"), nil
}
