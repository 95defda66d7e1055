package wire

import (
	"fmt"
	"strings"
)

// Dump renders p the way a debug_level>=1 receiver additionally logs each
// received packet: a struct-literal-ish form with the payload escaped the
// same way original_source/sofinc.c's print_message escapes it (quote,
// backslash, \a, \b, \n, \t; anything else non-printable as \NNN octal).
func Dump(p Packet) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range p.Payload {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				fmt.Fprintf(&b, `\%03o`, c)
			}
		}
	}
	b.WriteByte('"')
	return fmt.Sprintf("sofi.Packet{Len: %d, Payload: %s}", p.Len(), b.String())
}
