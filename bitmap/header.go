// This file renders a packed bitmap as a C header declaration, for pasting
// the image straight into firmware source instead of sending it over the
// wire.

package bitmap

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultValuesPerLine is how many 0xHH tokens are emitted per line of the
// array literal before wrapping.
const DefaultValuesPerLine = 12

type HeaderOptions struct {
	// ValuesPerLine overrides DefaultValuesPerLine when positive.
	ValuesPerLine int
}

// WriteHeader emits a C header block declaring the bitmap's dimensions and
// data under the given identifier:
//
//	#define <name>_width 8
//	#define <name>_height 1
//	static const unsigned char <name>[] = {
//	  0x80
//	};
func WriteHeader(w io.Writer, name string, b *PackedBitmap, opts *HeaderOptions) error {
	perLine := DefaultValuesPerLine
	if opts != nil && opts.ValuesPerLine > 0 {
		perLine = opts.ValuesPerLine
	}

	if _, err := fmt.Fprintf(w, "#define %s_width %d\n", name, b.width); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "#define %s_height %d\n", name, b.height); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "static const unsigned char %s[] = {\n", name); err != nil {
		return err
	}

	data := b.data
	for i, v := range data {
		if i%perLine == 0 {
			if _, err := io.WriteString(w, "  "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "0x%02X", v); err != nil {
			return err
		}
		if i < len(data)-1 {
			sep := ", "
			if (i+1)%perLine == 0 {
				sep = ",\n"
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "\n};\n")
	return err
}

// Header is a convenience wrapper around WriteHeader with default options.
func Header(name string, b *PackedBitmap) string {
	var buf bytes.Buffer
	WriteHeader(&buf, name, b, nil)
	return buf.String()
}
