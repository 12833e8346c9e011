package ir

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DillonJettCallis/letlang/lang/shape"
)

// Encode/Decode persist a Module to/from a bespoke binary format (spec.md §6's
// optional persisted IR format, §8's round-trip invariant: "Serializing then
// deserializing an IR module yields a structurally identical module"). Field
// order and widths track the in-memory Module/Function/FuncRef/Local/Op
// structs exactly, which is why this is a bespoke format over encoding/binary
// rather than a generic encoder (gob, protobuf): neither tracks this package's
// memory layout, and the invariant above is stated in terms of that layout.
const (
	tagNoOp byte = iota
	tagDuplicate
	tagPop
	tagSwap
	tagLoadConstNull
	tagLoadConstTrue
	tagLoadConstFalse
	tagLoadConstFloat
	tagLoadConstString
	tagLoadConstFunction
	tagLoadValue
	tagStoreValue
	tagFreeLocal
	tagCallStatic
	tagCallDynamic
	tagBuildClosure
	tagBuildRecursiveFunction
	tagReturn
	tagBranch
	tagDebug
	tagError
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

func encodeFuncRef(w io.Writer, ref FuncRef) error {
	if err := writeString(w, ref.Package); err != nil {
		return err
	}
	if err := writeString(w, ref.Module); err != nil {
		return err
	}
	if err := writeString(w, ref.Name); err != nil {
		return err
	}
	return shape.Encode(w, ref.Shape)
}

func decodeFuncRef(r io.Reader) (FuncRef, error) {
	pkg, err := readString(r)
	if err != nil {
		return FuncRef{}, err
	}
	mod, err := readString(r)
	if err != nil {
		return FuncRef{}, err
	}
	name, err := readString(r)
	if err != nil {
		return FuncRef{}, err
	}
	shp, err := shape.Decode(r)
	if err != nil {
		return FuncRef{}, err
	}
	return FuncRef{Package: pkg, Module: mod, Name: name, Shape: shp}, nil
}

func encodeOps(w io.Writer, ops []Op) error {
	if err := writeUint32(w, uint32(len(ops))); err != nil {
		return err
	}
	for _, op := range ops {
		if err := encodeOp(w, op); err != nil {
			return err
		}
	}
	return nil
}

func decodeOps(r io.Reader) ([]Op, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ops := make([]Op, n)
	for i := range ops {
		if ops[i], err = decodeOp(r); err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func writeTag(w io.Writer, tag byte) error {
	return binary.Write(w, binary.LittleEndian, tag)
}

func encodeOp(w io.Writer, op Op) error {
	switch o := op.(type) {
	case NoOp:
		return writeTag(w, tagNoOp)
	case Duplicate:
		return writeTag(w, tagDuplicate)
	case Pop:
		return writeTag(w, tagPop)
	case Swap:
		return writeTag(w, tagSwap)
	case LoadConstNull:
		return writeTag(w, tagLoadConstNull)
	case LoadConstTrue:
		return writeTag(w, tagLoadConstTrue)
	case LoadConstFalse:
		return writeTag(w, tagLoadConstFalse)

	case LoadConstFloat:
		if err := writeTag(w, tagLoadConstFloat); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, o.Value)

	case LoadConstString:
		if err := writeTag(w, tagLoadConstString); err != nil {
			return err
		}
		return writeString(w, o.Value)

	case LoadConstFunction:
		if err := writeTag(w, tagLoadConstFunction); err != nil {
			return err
		}
		return encodeFuncRef(w, o.Ref)

	case LoadValue:
		if err := writeTag(w, tagLoadValue); err != nil {
			return err
		}
		return writeString(w, o.Name)

	case StoreValue:
		if err := writeTag(w, tagStoreValue); err != nil {
			return err
		}
		return writeString(w, o.Name)

	case FreeLocal:
		if err := writeTag(w, tagFreeLocal); err != nil {
			return err
		}
		return writeString(w, o.Name)

	case CallStatic:
		if err := writeTag(w, tagCallStatic); err != nil {
			return err
		}
		return encodeFuncRef(w, o.Ref)

	case CallDynamic:
		if err := writeTag(w, tagCallDynamic); err != nil {
			return err
		}
		return writeUint32(w, uint32(o.Argc))

	case BuildClosure:
		if err := writeTag(w, tagBuildClosure); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(o.Argc)); err != nil {
			return err
		}
		return encodeFuncRef(w, o.Ref)

	case BuildRecursiveFunction:
		return writeTag(w, tagBuildRecursiveFunction)

	case Return:
		return writeTag(w, tagReturn)

	case Branch:
		if err := writeTag(w, tagBranch); err != nil {
			return err
		}
		if err := encodeOps(w, o.Then); err != nil {
			return err
		}
		return encodeOps(w, o.Else)

	case Debug:
		return writeTag(w, tagDebug)

	case Error:
		if err := writeTag(w, tagError); err != nil {
			return err
		}
		return writeString(w, o.Message)

	default:
		return fmt.Errorf("ir: encode: unknown op %T", op)
	}
}

func decodeOp(r io.Reader) (Op, error) {
	var tag byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}

	switch tag {
	case tagNoOp:
		return NoOp{}, nil
	case tagDuplicate:
		return Duplicate{}, nil
	case tagPop:
		return Pop{}, nil
	case tagSwap:
		return Swap{}, nil
	case tagLoadConstNull:
		return LoadConstNull{}, nil
	case tagLoadConstTrue:
		return LoadConstTrue{}, nil
	case tagLoadConstFalse:
		return LoadConstFalse{}, nil

	case tagLoadConstFloat:
		var v float64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return LoadConstFloat{Value: v}, nil

	case tagLoadConstString:
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		return LoadConstString{Value: v}, nil

	case tagLoadConstFunction:
		ref, err := decodeFuncRef(r)
		if err != nil {
			return nil, err
		}
		return LoadConstFunction{Ref: ref}, nil

	case tagLoadValue:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return LoadValue{Name: name}, nil

	case tagStoreValue:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return StoreValue{Name: name}, nil

	case tagFreeLocal:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return FreeLocal{Name: name}, nil

	case tagCallStatic:
		ref, err := decodeFuncRef(r)
		if err != nil {
			return nil, err
		}
		return CallStatic{Ref: ref}, nil

	case tagCallDynamic:
		argc, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		return CallDynamic{Argc: int(argc)}, nil

	case tagBuildClosure:
		argc, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		ref, err := decodeFuncRef(r)
		if err != nil {
			return nil, err
		}
		return BuildClosure{Argc: int(argc), Ref: ref}, nil

	case tagBuildRecursiveFunction:
		return BuildRecursiveFunction{}, nil

	case tagReturn:
		return Return{}, nil

	case tagBranch:
		then, err := decodeOps(r)
		if err != nil {
			return nil, err
		}
		els, err := decodeOps(r)
		if err != nil {
			return nil, err
		}
		return Branch{Then: then, Else: els}, nil

	case tagDebug:
		return Debug{}, nil

	case tagError:
		msg, err := readString(r)
		if err != nil {
			return nil, err
		}
		return Error{Message: msg}, nil

	default:
		return nil, fmt.Errorf("ir: decode: unknown op tag %d", tag)
	}
}

func encodeFunction(w io.Writer, fn *Function) error {
	if err := encodeFuncRef(w, fn.Ref); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(fn.Locals))); err != nil {
		return err
	}
	for _, l := range fn.Locals {
		if err := writeString(w, l.Name); err != nil {
			return err
		}
		if err := shape.Encode(w, l.Shape); err != nil {
			return err
		}
	}
	return encodeOps(w, fn.Body)
}

func decodeFunction(r io.Reader) (*Function, error) {
	ref, err := decodeFuncRef(r)
	if err != nil {
		return nil, err
	}
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	locals := make([]Local, n)
	for i := range locals {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		shp, err := shape.Decode(r)
		if err != nil {
			return nil, err
		}
		locals[i] = Local{Name: name, Shape: shp}
	}
	body, err := decodeOps(r)
	if err != nil {
		return nil, err
	}
	return &Function{Ref: ref, Locals: locals, Body: body}, nil
}

// Encode writes mod's full binary encoding to w.
func Encode(w io.Writer, mod *Module) error {
	if err := writeString(w, mod.Package); err != nil {
		return err
	}
	if err := writeString(w, mod.Module); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(mod.Functions))); err != nil {
		return err
	}
	for _, fn := range mod.Functions {
		if err := encodeFunction(w, fn); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one Module from r, the inverse of Encode.
func Decode(r io.Reader) (*Module, error) {
	pkg, err := readString(r)
	if err != nil {
		return nil, err
	}
	modName, err := readString(r)
	if err != nil {
		return nil, err
	}
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	functions := make([]*Function, n)
	for i := range functions {
		if functions[i], err = decodeFunction(r); err != nil {
			return nil, err
		}
	}
	return &Module{Package: pkg, Module: modName, Functions: functions}, nil
}
