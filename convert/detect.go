package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	fixzip "github.com/hidez8891/zip"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"hbc/common"
)

// srcEncoding is what byte order mark at the beginning of the source says.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUnknown:
		return "unknown"
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	default:
		return fmt.Sprintf("srcEncoding(%d)", int(e))
	}
}

// sniffLen is how much of the file we look at when detecting its type.
const sniffLen = 1024

var (
	htmlType  = filetype.NewType("html", "text/html")
	xhtmlType = filetype.NewType("xhtml", "application/xhtml+xml")
)

var markupExts = map[string]bool{
	".html":  true,
	".htm":   true,
	".xhtml": true,
	".xht":   true,
}

func init() {
	filetype.AddMatcher(xhtmlType, xhtmlMatcher)
	filetype.AddMatcher(htmlType, htmlMatcher)
}

// sniffText returns beginning of the buffer converted to UTF-8 (when BOM
// says so) and lowercased.
func sniffText(buf []byte) []byte {
	enc := detectUTF(buf)
	if enc != encUnknown && enc != encUTF8 {
		if dec, err := io.ReadAll(selectReader(bytes.NewReader(buf), enc)); err == nil {
			buf = dec
		}
	}
	buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
	return bytes.ToLower(bytes.TrimSpace(buf))
}

func xhtmlMatcher(buf []byte) bool {
	text := sniffText(buf)
	return bytes.HasPrefix(text, []byte("<?xml")) && bytes.Contains(text, []byte("http://www.w3.org/1999/xhtml"))
}

func htmlMatcher(buf []byte) bool {
	text := sniffText(buf)
	if !bytes.HasPrefix(text, []byte("<")) {
		return false
	}
	for _, marker := range []string{"<!doctype html", "<html", "<head", "<body", "<p", "<div", "<h1", "<ul", "<ol"} {
		if bytes.Contains(text, []byte(marker)) {
			return true
		}
	}
	return false
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF checks for byte order marks, longest first: UTF-32LE BOM starts
// with UTF-16LE one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps r so it produces UTF-8 without BOM.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	var e encoding.Encoding
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		e = unicode.UTF8BOM
	case encUTF16BigEndian:
		e = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case encUTF16LittleEndian:
		e = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case encUTF32BigEndian:
		e = utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case encUTF32LittleEndian:
		e = utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	default:
		// this should never happen
		panic(fmt.Sprintf("unexpected source encoding %d", enc))
	}
	return transform.NewReader(r, e.NewDecoder())
}

func readHead(r io.Reader) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile checks that file has zip extension and zip signature.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// detectMarkup looks at the name and head of the file and reports whether it
// is markup we could convert, what kind and what BOM it starts with.
func detectMarkup(name string, head []byte) (bool, common.InputFmt, srcEncoding) {
	if !markupExts[strings.ToLower(filepath.Ext(name))] {
		return false, common.InputFmtHtml, encUnknown
	}
	enc := detectUTF(head)
	switch {
	case filetype.IsType(head, xhtmlType):
		return true, common.InputFmtXhtml, enc
	case filetype.IsType(head, htmlType):
		return true, common.InputFmtHtml, enc
	}
	return false, common.InputFmtHtml, encUnknown
}

// isMarkupFile is detectMarkup for a file on disk.
func isMarkupFile(path string) (bool, common.InputFmt, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, common.InputFmtHtml, encUnknown, err
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return false, common.InputFmtHtml, encUnknown, err
	}
	ok, in, enc := detectMarkup(path, head)
	return ok, in, enc, nil
}

// isMarkupInArchive is detectMarkup for archive entry.
func isMarkupInArchive(f *fixzip.File) (bool, common.InputFmt, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return false, common.InputFmtHtml, encUnknown, err
	}
	defer r.Close()

	head, err := readHead(r)
	if err != nil {
		return false, common.InputFmtHtml, encUnknown, err
	}
	ok, in, enc := detectMarkup(f.Name, head)
	return ok, in, enc, nil
}

// decodeMarkup returns markup as UTF-8 string. Without BOM HTML encoding is
// guessed from meta tags. XHTML without BOM is left alone, XML declaration
// is handled by the parser.
func decodeMarkup(data []byte, in common.InputFmt, enc srcEncoding) (string, error) {
	if enc != encUnknown {
		out, err := io.ReadAll(selectReader(bytes.NewReader(data), enc))
		if err != nil {
			return "", fmt.Errorf("unable to decode %s source: %w", enc, err)
		}
		return string(out), nil
	}
	if in == common.InputFmtXhtml {
		return string(data), nil
	}

	e, name, _ := charset.DetermineEncoding(data, "text/html")
	if name == "windows-1252" && utf8.Valid(data) {
		// fallback guess made by looking at the head only
		return string(data), nil
	}
	out, err := e.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("unable to decode source from %s: %w", name, err)
	}
	return string(out), nil
}
