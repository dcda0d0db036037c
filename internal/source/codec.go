// Package source decodes and re-encodes Python source files.
//
// Python files carry their own character set: an optional UTF-8 BOM
// plus an optional PEP 263 coding cookie on one of the first two
// lines. Transform passes only ever see LF-normalized UTF-8 text;
// DecodeBytes captures the original encoding and newline convention so
// EncodeText can reproduce the file's byte conventions on write-back.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Encoding names the character set of a decoded file. Values follow
// Python codec naming: plain UTF-8 is "utf-8", a BOM-prefixed file is
// "utf-8-sig", anything else is the normalized PEP 263 cookie name.
type Encoding string

const (
	UTF8    Encoding = "utf-8"
	UTF8Sig Encoding = "utf-8-sig"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	// ErrInvalidUTF8 reports bytes that do not decode as UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
	// ErrUnknownEncoding reports a coding cookie naming no known codec.
	ErrUnknownEncoding = errors.New("unknown encoding")
	// ErrEncodingConflict reports a coding cookie that contradicts a BOM.
	ErrEncodingConflict = errors.New("coding cookie conflicts with BOM")
)

// cookieRe matches a PEP 263 coding declaration inside a comment.
var cookieRe = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-_.a-zA-Z0-9]+)`)

// blankRe matches lines that allow the cookie to appear on line two.
var blankRe = regexp.MustCompile(`^[ \t\f]*(?:[#\r\n]|$)`)

// DecodeBytes splits raw file bytes into LF-normalized text plus the
// encoding and newline convention needed to reproduce the original
// bytes. Empty input decodes to empty UTF-8 text with LF newlines.
func DecodeBytes(raw []byte) (text string, enc Encoding, newline string, err error) {
	if len(raw) == 0 {
		return "", UTF8, "\n", nil
	}

	enc = UTF8
	body := raw
	if bytes.HasPrefix(raw, utf8BOM) {
		enc = UTF8Sig
		body = raw[len(utf8BOM):]
	}

	cookie := findCookie(body)
	if cookie != "" && cookie != string(UTF8) {
		if enc == UTF8Sig {
			return "", "", "", fmt.Errorf("%w: %s", ErrEncodingConflict, cookie)
		}
		enc = Encoding(cookie)
	}

	newline = detectNewline(body)

	decoded, err := decode(body, enc)
	if err != nil {
		return "", "", "", err
	}
	return normalizeNewlines(decoded), enc, newline, nil
}

// EncodeText converts LF-normalized text back into file bytes using the
// conventions captured by DecodeBytes.
func EncodeText(text string, enc Encoding, newline string) ([]byte, error) {
	if newline != "" && newline != "\n" {
		text = strings.ReplaceAll(text, "\n", newline)
	}
	switch enc {
	case UTF8, "":
		return []byte(text), nil
	case UTF8Sig:
		out := make([]byte, 0, len(utf8BOM)+len(text))
		out = append(out, utf8BOM...)
		return append(out, text...), nil
	}

	codec, err := lookup(enc)
	if err != nil {
		return nil, err
	}
	raw, err := codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode as %s: %w", enc, err)
	}
	return raw, nil
}

// findCookie scans the first two lines for a PEP 263 declaration. The
// second line only counts when the first is blank or a bare comment.
func findCookie(body []byte) string {
	first, rest := splitLine(body)
	if m := cookieRe.FindSubmatch(first); m != nil {
		return normalizeName(string(m[1]))
	}
	if !blankRe.Match(first) {
		return ""
	}
	second, _ := splitLine(rest)
	if m := cookieRe.FindSubmatch(second); m != nil {
		return normalizeName(string(m[1]))
	}
	return ""
}

func splitLine(b []byte) (line, rest []byte) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i+1], b[i+1:]
	}
	return b, nil
}

// normalizeName lowercases a codec name and folds the separator and
// alias spellings Python accepts for its common codecs.
func normalizeName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	switch name {
	case "utf8", "u8", "utf":
		return string(UTF8)
	case "utf-8-sig":
		return "utf-8-sig"
	case "latin", "latin1", "latin-1", "l1", "8859", "cp819", "iso8859-1", "iso-8859-1":
		return "iso-8859-1"
	case "cp1252", "windows-1252":
		return "windows-1252"
	case "ascii", "us-ascii", "646":
		return "us-ascii"
	default:
		return name
	}
}

func decode(body []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF8, UTF8Sig:
		if !utf8.Valid(body) {
			return "", ErrInvalidUTF8
		}
		return string(body), nil
	case "us-ascii":
		for _, b := range body {
			if b >= 0x80 {
				return "", fmt.Errorf("byte 0x%02X is not ASCII", b)
			}
		}
		return string(body), nil
	}

	codec, err := lookup(enc)
	if err != nil {
		return "", err
	}
	decoded, err := codec.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", enc, err)
	}
	return string(decoded), nil
}

// lookup resolves a normalized codec name through the IANA registry.
func lookup(enc Encoding) (encoding.Encoding, error) {
	codec, err := ianaindex.IANA.Encoding(string(enc))
	if err != nil || codec == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	return codec, nil
}

// detectNewline reports the first line terminator in body, defaulting
// to LF when the file has a single unterminated line.
func detectNewline(body []byte) string {
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\n':
			return "\n"
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				return "\r\n"
			}
			return "\r"
		}
	}
	return "\n"
}

func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
