package ingest

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrEmptyUpload is returned when the uploaded payload has no bytes at all.
// Anything non-empty always decodes to some string.
var ErrEmptyUpload = errors.New("[Sniffer] uploaded file is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const delimiterSampleSize = 2048

// DecodeUpload turns raw uploaded bytes into text. Candidate encodings are
// tried in order; the first clean decode wins. The final candidate (Latin-1)
// accepts any byte sequence, so non-empty input never fails to decode.
func DecodeUpload(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyUpload
	}

	if bytes.HasPrefix(data, utf8BOM) {
		body := data[len(utf8BOM):]
		if utf8.Valid(body) {
			return string(body), "utf-8-bom", nil
		}
	}

	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	if out, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		return string(out), "gbk", nil
	}

	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
			return string(out), "utf-16", nil
		}
	}

	if out, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(out), "latin-1", nil
	}

	// Unreachable with the current candidate list, kept so the contract
	// holds if the list changes: decode permissively, never error.
	slog.Warn("[Sniffer] all candidate encodings failed, substituting bad bytes")
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), "utf-8-replaced", nil
}

// SniffDelimiter inspects the first line of a bounded prefix and picks the
// most frequent of the usual CSV delimiters. Inconclusive input defaults to
// a comma; sniffing never fails.
func SniffDelimiter(text string) rune {
	sample := text
	if len(sample) > delimiterSampleSize {
		sample = sample[:delimiterSampleSize]
	}
	firstLine := sample
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		firstLine = sample[:i]
	}

	delimiter := ','
	best := 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(firstLine, string(d)); n > best {
			best = n
			delimiter = d
		}
	}
	return delimiter
}
