package shape

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Shape's own tagged binary encoding: a one-byte kind tag followed by that
// kind's fields, recursing into nested shapes. lang/ir.Encode/Decode uses
// this to persist the Shape embedded in every FuncRef and Local (spec.md
// §6's optional persisted IR format, §8's serialize/deserialize round-trip
// invariant).
const (
	tagBase byte = iota
	tagGeneric
	tagGenericCtor
	tagFunction
	tagNamed
	tagUnknown
)

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeTag(w io.Writer, tag byte) error {
	return binary.Write(w, binary.LittleEndian, tag)
}

// Encode writes s's binary encoding to w.
func Encode(w io.Writer, s Shape) error {
	switch s.kind {
	case kindBase:
		if err := writeTag(w, tagBase); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, byte(s.base))

	case kindGeneric:
		if err := writeTag(w, tagGeneric); err != nil {
			return err
		}
		if err := Encode(w, s.genericBase); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(s.genericArgs))); err != nil {
			return err
		}
		for _, a := range s.genericArgs {
			if err := Encode(w, a); err != nil {
				return err
			}
		}
		return nil

	case kindGenericCtor:
		if err := writeTag(w, tagGenericCtor); err != nil {
			return err
		}
		if err := Encode(w, s.genericBase); err != nil {
			return err
		}
		return writeUint32(w, uint32(s.genericCtorArity))

	case kindFunction:
		if err := writeTag(w, tagFunction); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(s.funcArgs))); err != nil {
			return err
		}
		for _, a := range s.funcArgs {
			if err := Encode(w, a); err != nil {
				return err
			}
		}
		return Encode(w, *s.funcResult)

	case kindNamed:
		if err := writeTag(w, tagNamed); err != nil {
			return err
		}
		return writeString(w, s.named)

	case kindUnknown:
		return writeTag(w, tagUnknown)

	default:
		return fmt.Errorf("shape: encode: unknown kind %d", s.kind)
	}
}

// Decode reads one Shape from r, the inverse of Encode.
func Decode(r io.Reader) (Shape, error) {
	var tag byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return Shape{}, err
	}

	switch tag {
	case tagBase:
		var b byte
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return Shape{}, err
		}
		return Base(BaseKind(b)), nil

	case tagGeneric:
		base, err := Decode(r)
		if err != nil {
			return Shape{}, err
		}
		n, err := readUint32(r)
		if err != nil {
			return Shape{}, err
		}
		args := make([]Shape, n)
		for i := range args {
			if args[i], err = Decode(r); err != nil {
				return Shape{}, err
			}
		}
		return Generic(base, args...), nil

	case tagGenericCtor:
		base, err := Decode(r)
		if err != nil {
			return Shape{}, err
		}
		arity, err := readUint32(r)
		if err != nil {
			return Shape{}, err
		}
		return GenericCtor(base, int(arity)), nil

	case tagFunction:
		n, err := readUint32(r)
		if err != nil {
			return Shape{}, err
		}
		args := make([]Shape, n)
		for i := range args {
			if args[i], err = Decode(r); err != nil {
				return Shape{}, err
			}
		}
		result, err := Decode(r)
		if err != nil {
			return Shape{}, err
		}
		return Function(result, args...), nil

	case tagNamed:
		name, err := readString(r)
		if err != nil {
			return Shape{}, err
		}
		return Named(name), nil

	case tagUnknown:
		return Unknown(), nil

	default:
		return Shape{}, fmt.Errorf("shape: decode: unknown tag %d", tag)
	}
}
