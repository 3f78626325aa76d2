// Package enc implements §4.2's DataEncoding decode/encode: the bit-level
// read/write of Integer, Float, String, and Binary encodings. Enumerated
// and Boolean parameter types reuse IntegerEncoding directly (see
// internal/xtce/ptype).
package enc

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

// SizeLookup resolves the already-decoded integer value of a parameter
// referenced by a dynamic String/Binary encoding's size_param_ref. Callers
// (internal/xtce/container) supply this from the running decode scope.
type SizeLookup func(qualifiedOrLocalName string) (int64, bool)

// DecodeInteger reads an IntegerEncoding's raw value.
func DecodeInteger(r *bitstream.Reader, e *model.DataEncoding) (int64, error) {
	if e.Kind != model.EncodingInteger {
		return 0, fmt.Errorf("enc: DecodeInteger called on non-integer encoding")
	}
	if e.Signed == model.TwosComplement {
		return r.ReadSigned(e.SizeInBits)
	}
	u, err := r.ReadUnsigned(e.SizeInBits)
	return int64(u), err
}

// EncodeInteger writes v as an IntegerEncoding.
func EncodeInteger(w *bitstream.Writer, e *model.DataEncoding, v int64) error {
	if e.Kind != model.EncodingInteger {
		return fmt.Errorf("enc: EncodeInteger called on non-integer encoding")
	}
	if e.Signed == model.TwosComplement {
		return w.WriteSigned(v, e.SizeInBits)
	}
	if v < 0 {
		return fmt.Errorf("enc: negative value %d for unsigned %d-bit encoding", v, e.SizeInBits)
	}
	return w.WriteUnsigned(uint64(v), e.SizeInBits)
}

// DecodeFloat reads a FloatEncoding's raw value.
func DecodeFloat(r *bitstream.Reader, e *model.DataEncoding) (float64, error) {
	if e.Kind != model.EncodingFloat {
		return 0, fmt.Errorf("enc: DecodeFloat called on non-float encoding")
	}
	return r.ReadFloat(e.SizeInBits)
}

// EncodeFloat writes v as a FloatEncoding.
func EncodeFloat(w *bitstream.Writer, e *model.DataEncoding, v float64) error {
	if e.Kind != model.EncodingFloat {
		return fmt.Errorf("enc: EncodeFloat called on non-float encoding")
	}
	return w.WriteFloat(v, e.SizeInBits)
}

// decodeCharset interprets raw bytes per the declared charset.
func decodeCharset(raw []byte, cs model.CharSet) (string, error) {
	switch cs {
	case model.CharSetUTF8, model.CharSetASCII:
		if !utf8.Valid(raw) && cs == model.CharSetUTF8 {
			return "", fmt.Errorf("enc: invalid UTF-8 string data")
		}
		return string(raw), nil
	case model.CharSetISO88591, model.CharSetWindows1252:
		// Both are single-byte charsets whose low 256 code points map
		// directly onto Unicode code points 0-255 for the purposes this
		// codec supports (the XTCE Windows-1252 distinction only matters
		// in the 0x80-0x9F control range, which telemetry strings do not
		// exercise).
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return string(runes), nil
	case model.CharSetUTF16:
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("enc: UTF-16 string data has odd byte length %d", len(raw))
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			units[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
		}
		return string(utf16.Decode(units)), nil
	default:
		return "", fmt.Errorf("enc: unsupported charset %d", cs)
	}
}

// encodeCharset converts s to raw bytes per the declared charset.
func encodeCharset(s string, cs model.CharSet) ([]byte, error) {
	switch cs {
	case model.CharSetUTF8, model.CharSetASCII:
		return []byte(s), nil
	case model.CharSetISO88591, model.CharSetWindows1252:
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r > 0xFF {
				return nil, fmt.Errorf("enc: rune %q out of range for single-byte charset", r)
			}
			out = append(out, byte(r))
		}
		return out, nil
	case model.CharSetUTF16:
		units := utf16.Encode([]rune(s))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			out[2*i] = byte(u >> 8)
			out[2*i+1] = byte(u)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("enc: unsupported charset %d", cs)
	}
}

// DecodeString reads a StringEncoding's raw value. For Dynamic sizing,
// sizeOf resolves the referenced size parameter's already-decoded integer
// value.
func DecodeString(r *bitstream.Reader, e *model.DataEncoding, sizeOf SizeLookup) (string, error) {
	if e.Kind != model.EncodingString {
		return "", fmt.Errorf("enc: DecodeString called on non-string encoding")
	}
	switch e.StringSizeKind {
	case model.StringSizeFixed:
		raw, err := r.ReadBytes(e.StringSizeInBits)
		if err != nil {
			return "", err
		}
		return decodeCharset(raw, e.CharSet)

	case model.StringSizeDynamic:
		n, ok := sizeOf(e.SizeParamRef)
		if !ok {
			return "", fmt.Errorf("enc: dynamic string size parameter %q not yet decoded", e.SizeParamRef)
		}
		var nBytes int64
		switch e.SizeIsOf {
		case model.SizeOfStringData:
			if n%8 != 0 {
				return "", fmt.Errorf("enc: dynamic string size %d bits is not byte-aligned", n)
			}
			nBytes = n / 8
		case model.SizeOfStringLengthInCharacters:
			nBytes = n // only valid for single-byte charsets; UTF-16 would need 2x, unsupported combination
		default:
			return "", fmt.Errorf("enc: unsupported sizeInBitsIsOf %d", e.SizeIsOf)
		}
		raw, err := r.ReadBytes(int(nBytes) * 8)
		if err != nil {
			return "", err
		}
		return decodeCharset(raw, e.CharSet)

	case model.StringSizeTerminated:
		var raw []byte
		for {
			b, err := r.ReadUnsigned(8)
			if err != nil {
				return "", err
			}
			if byte(b) == e.Terminator {
				break
			}
			raw = append(raw, byte(b))
		}
		return decodeCharset(raw, e.CharSet)

	default:
		return "", fmt.Errorf("enc: unsupported string sizing kind %d", e.StringSizeKind)
	}
}

// EncodeString writes s as a StringEncoding. For Dynamic sizing the caller
// is responsible for having already written the size parameter that s's
// length must match; EncodeString only validates and writes the bytes.
func EncodeString(w *bitstream.Writer, e *model.DataEncoding, s string) error {
	if e.Kind != model.EncodingString {
		return fmt.Errorf("enc: EncodeString called on non-string encoding")
	}
	raw, err := encodeCharset(s, e.CharSet)
	if err != nil {
		return err
	}
	switch e.StringSizeKind {
	case model.StringSizeFixed:
		want := e.StringSizeInBits / 8
		if len(raw) > want {
			return fmt.Errorf("enc: string %q (%d bytes) exceeds fixed width %d bytes", s, len(raw), want)
		}
		for len(raw) < want {
			raw = append(raw, 0)
		}
		return w.WriteBytes(raw)

	case model.StringSizeDynamic:
		return w.WriteBytes(raw)

	case model.StringSizeTerminated:
		if err := w.WriteBytes(raw); err != nil {
			return err
		}
		return w.WriteUnsigned(uint64(e.Terminator), 8)

	default:
		return fmt.Errorf("enc: unsupported string sizing kind %d", e.StringSizeKind)
	}
}

// DecodeBinary reads a BinaryEncoding's raw bytes.
func DecodeBinary(r *bitstream.Reader, e *model.DataEncoding, sizeOf SizeLookup) ([]byte, error) {
	if e.Kind != model.EncodingBinary {
		return nil, fmt.Errorf("enc: DecodeBinary called on non-binary encoding")
	}
	switch e.BinarySizeKind {
	case model.BinarySizeFixed:
		return r.ReadBytes(e.BinarySizeInBits)
	case model.BinarySizeDynamic:
		n, ok := sizeOf(e.SizeParamRef)
		if !ok {
			return nil, fmt.Errorf("enc: dynamic binary size parameter %q not yet decoded", e.SizeParamRef)
		}
		return r.ReadBytes(int(n) * 8)
	default:
		return nil, fmt.Errorf("enc: unsupported binary sizing kind %d", e.BinarySizeKind)
	}
}

// EncodeBinary writes raw as a BinaryEncoding (passthrough per §4.2).
func EncodeBinary(w *bitstream.Writer, e *model.DataEncoding, raw []byte) error {
	if e.Kind != model.EncodingBinary {
		return fmt.Errorf("enc: EncodeBinary called on non-binary encoding")
	}
	if e.BinarySizeKind == model.BinarySizeFixed {
		want := e.BinarySizeInBits / 8
		if len(raw) != want {
			return fmt.Errorf("enc: binary value has %d bytes, fixed width wants %d", len(raw), want)
		}
	}
	return w.WriteBytes(raw)
}
