package archive

import (
	"errors"
	"fmt"

	"github.com/pgtk/pgtk/internal/view"
	"google.golang.org/protobuf/encoding/protowire"
)

// Record file format: 4-byte magic, 1-byte version, then a protobuf-wire message.
const (
	recordMagic      = "PGTK"
	recordVersion    = 1
	recordHeaderSize = len(recordMagic) + 1
)

// Field numbers of the record message.
const (
	fieldSchema     protowire.Number = 1
	fieldName       protowire.Number = 2
	fieldLevel      protowire.Number = 3
	fieldKind       protowire.Number = 4
	fieldDefinition protowire.Number = 5
	fieldIndex      protowire.Number = 6
)

// Field numbers of the nested index message.
const (
	fieldIndexName       protowire.Number = 1
	fieldIndexDefinition protowire.Number = 2
)

var (
	errInvalidMagic    = errors.New("invalid record magic")
	errVersionMismatch = errors.New("record version mismatch")
	errMissingName     = errors.New("record is missing schema or view name")
)

// Encode serializes a record into the archive's binary format
func Encode(r *view.Record) []byte {
	b := make([]byte, 0, recordHeaderSize+len(r.Definition)+64)
	b = append(b, recordMagic...)
	b = append(b, recordVersion)

	b = appendString(b, fieldSchema, r.Schema)
	b = appendString(b, fieldName, r.Name)
	b = protowire.AppendTag(b, fieldLevel, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(r.Level)))
	b = appendString(b, fieldKind, string(r.Kind))
	b = appendString(b, fieldDefinition, r.Definition)

	for _, idx := range r.Indexes {
		var ib []byte
		ib = appendString(ib, fieldIndexName, idx.Name)
		ib = appendString(ib, fieldIndexDefinition, idx.Definition)
		b = protowire.AppendTag(b, fieldIndex, protowire.BytesType)
		b = protowire.AppendBytes(b, ib)
	}

	return b
}

// Decode parses a record produced by Encode
func Decode(data []byte) (*view.Record, error) {
	if len(data) < recordHeaderSize || string(data[:len(recordMagic)]) != recordMagic {
		return nil, errInvalidMagic
	}
	if data[len(recordMagic)] != recordVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", errVersionMismatch, data[len(recordMagic)], recordVersion)
	}

	rec := &view.Record{}
	var kind string

	err := consumeFields(data[recordHeaderSize:], func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldSchema && typ == protowire.BytesType:
			return consumeString(b, &rec.Schema)
		case num == fieldName && typ == protowire.BytesType:
			return consumeString(b, &rec.Name)
		case num == fieldKind && typ == protowire.BytesType:
			return consumeString(b, &kind)
		case num == fieldDefinition && typ == protowire.BytesType:
			return consumeString(b, &rec.Definition)
		case num == fieldLevel && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			rec.Level = int32(protowire.DecodeZigZag(v))
			return n, nil
		case num == fieldIndex && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			idx, err := decodeIndex(raw)
			if err != nil {
				return 0, err
			}
			rec.Indexes = append(rec.Indexes, idx)
			return n, nil
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			return n, nil
		}
	})
	if err != nil {
		return nil, err
	}

	if rec.Schema == "" || rec.Name == "" {
		return nil, errMissingName
	}
	if rec.Kind, err = view.ParseKind(kind); err != nil {
		return nil, err
	}

	return rec, nil
}

func decodeIndex(data []byte) (view.Index, error) {
	var idx view.Index
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldIndexName && typ == protowire.BytesType:
			return consumeString(b, &idx.Name)
		case num == fieldIndexDefinition && typ == protowire.BytesType:
			return consumeString(b, &idx.Definition)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			return n, nil
		}
	})
	return idx, err
}

// consumeFields walks a message, handing each field's value bytes to fn.
// fn returns how many bytes it consumed.
func consumeFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}
