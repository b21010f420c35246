// Package pdffixture writes small, valid PDF files for tests.
package pdffixture

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"fmt"
	"os"
	"strings"
)

// Common page sizes in points
const (
	LetterWidth  = 612
	LetterHeight = 792
	A4Width      = 595
	A4Height     = 842
)

// Page describes one page of a generated document
type Page struct {
	Width  float64
	Height float64
	Text   string
	Rotate int
}

// Pages returns n letter-sized pages labelled "Hello Page i"
func Pages(n int) []Page {
	return SizedPages(n, LetterWidth, LetterHeight)
}

// SizedPages returns n pages of the given size in points
func SizedPages(n int, width, height float64) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Width: width, Height: height, Text: fmt.Sprintf("Hello Page %d", i+1)}
	}
	return pages
}

// Build returns the bytes of a PDF with one Helvetica text line per page.
// Objects: 1 catalog, 2 page tree, 3 font, then a page and a content stream per page.
func Build(pages []Page) []byte {
	return build(pages, nil)
}

// BuildEncrypted is Build protected by the standard security handler
// (revision 2, 40-bit RC4). Opening it requires userPassword; an empty
// ownerPassword reuses userPassword. The encryption dictionary is the last object.
func BuildEncrypted(pages []Page, userPassword, ownerPassword string) []byte {
	return build(pages, newEncryption(userPassword, ownerPassword))
}

// Write builds the document and writes it to path
func Write(path string, pages []Page) error {
	return os.WriteFile(path, Build(pages), 0644)
}

// WriteEncrypted builds an encrypted document and writes it to path
func WriteEncrypted(path string, pages []Page, userPassword, ownerPassword string) error {
	return os.WriteFile(path, BuildEncrypted(pages, userPassword, ownerPassword), 0644)
}

func build(pages []Page, enc *encryption) []byte {
	var buf bytes.Buffer
	var offsets []int
	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	addObject("<< /Type /Catalog /Pages 2 0 R >>")
	addObject(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	addObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, page := range pages {
		rotate := ""
		if page.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", page.Rotate)
		}
		addObject(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s]%s /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>",
			number(page.Width), number(page.Height), rotate, 5+2*i))

		stream := []byte(fmt.Sprintf("BT\n/F1 24 Tf\n72 %s Td\n(%s) Tj\nET\n", number(page.Height-72), escape(page.Text)))
		if enc != nil {
			stream = enc.object(5+2*i, stream)
		}
		addObject(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	trailer := "/Root 1 0 R"
	if enc != nil {
		addObject(fmt.Sprintf("<< /Filter /Standard /V 1 /R 2 /Length 40 /O <%x> /U <%x> /P %d >>", enc.owner, enc.user, permissions))
		trailer += fmt.Sprintf(" /Encrypt %d 0 R /ID [<%x> <%x>]", len(offsets), enc.id, enc.id)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, trailer, xrefOffset)
	return buf.Bytes()
}

// permissions grants everything, the two low bits must be clear
const permissions = -4

var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// encryption holds the revision 2 standard security handler values of a document
type encryption struct {
	key   []byte
	owner []byte
	user  []byte
	id    []byte
}

func newEncryption(userPassword, ownerPassword string) *encryption {
	if ownerPassword == "" {
		ownerPassword = userPassword
	}
	id := md5.Sum([]byte("pdffixture"))

	ownerKey := md5.Sum(padPassword(ownerPassword))
	owner := rc4XOR(ownerKey[:5], padPassword(userPassword))

	var p int32 = permissions
	h := md5.New()
	h.Write(padPassword(userPassword))
	h.Write(owner)
	h.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	h.Write(id[:])
	key := h.Sum(nil)[:5]

	return &encryption{
		key:   key,
		owner: owner,
		user:  rc4XOR(key, passwordPad),
		id:    id[:],
	}
}

// object encrypts data belonging to object num, generation 0
func (e *encryption) object(num int, data []byte) []byte {
	h := md5.New()
	h.Write(e.key)
	h.Write([]byte{byte(num), byte(num >> 8), byte(num >> 16), 0, 0})
	return rc4XOR(h.Sum(nil)[:len(e.key)+5], data)
}

func padPassword(password string) []byte {
	return append([]byte(password), passwordPad...)[:32]
}

func rc4XOR(key, data []byte) []byte {
	c, err := rc4.NewCipher(key)
	if err != nil {
		panic(err)
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}

func number(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func escape(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(text)
}
