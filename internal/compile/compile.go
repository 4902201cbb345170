// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compile defines the compiled artifact of a module and its
// binary encoding.
//
// An artifact starts with a header laid out like that of the target
// runtime's bytecode files:
//
//	magic   uint16, little-endian: the magic number of the target version
//	"\r\n"
//	flags   uint32, little-endian: reserved, zero
//	length  uint32, little-endian: the length of the payload
//
// The payload is a protocol-buffer wire encoding of a Program:
//
//	Program = 1: filename   string
//	          2: module     string
//	          3: deps       repeated string
//	          4: globals    repeated Global
//	          5: code       string
//	          6: version    varint
//	Global  = 1: name       string
//	          2: type       string
//	          3: public     varint (bool)
package compile // import "go.erg.dev/internal/compile"

import (
	"encoding/binary"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Version is the version of the payload encoding.
const Version = 1

const headerSize = 12

// ErrNotArtifact is returned when decoding data that is not an artifact.
var ErrNotArtifact = errors.New("not a compiled module")

// A MagicError reports an artifact compiled for another target version.
type MagicError struct {
	Got, Want uint16
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("bad magic number %d (target runtime expects %d)", e.Got, e.Want)
}

// A Program is a compiled module: the transpiled code of the module
// and what an importer needs to know about it.
type Program struct {
	Filename string   // source file name
	Module   string   // module path
	Deps     []string // modules imported, in elaboration order
	Globals  []Global // module-level bindings, in definition order
	Code     string   // target-language source
}

// A Global describes one module-level binding.
type Global struct {
	Name   string
	Type   string
	Public bool
}

const (
	fieldFilename protowire.Number = 1
	fieldModule   protowire.Number = 2
	fieldDeps     protowire.Number = 3
	fieldGlobals  protowire.Number = 4
	fieldCode     protowire.Number = 5
	fieldVersion  protowire.Number = 6

	fieldGlobalName   protowire.Number = 1
	fieldGlobalType   protowire.Number = 2
	fieldGlobalPublic protowire.Number = 3
)

// Encode returns the artifact of p for the target with the given magic
// number.
func (p *Program) Encode(magic uint16) ([]byte, error) {
	var b []byte
	b = appendString(b, fieldFilename, p.Filename)
	b = appendString(b, fieldModule, p.Module)
	for _, d := range p.Deps {
		b = appendString(b, fieldDeps, d)
	}
	for _, g := range p.Globals {
		var gb []byte
		gb = appendString(gb, fieldGlobalName, g.Name)
		gb = appendString(gb, fieldGlobalType, g.Type)
		if g.Public {
			gb = protowire.AppendTag(gb, fieldGlobalPublic, protowire.VarintType)
			gb = protowire.AppendVarint(gb, 1)
		}
		b = protowire.AppendTag(b, fieldGlobals, protowire.BytesType)
		b = protowire.AppendBytes(b, gb)
	}
	b = appendString(b, fieldCode, p.Code)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)

	n, err := safecast.Conv[uint32](len(b))
	if err != nil {
		return nil, errors.Wrap(err, "payload too large")
	}
	out := make([]byte, 0, headerSize+len(b))
	out = binary.LittleEndian.AppendUint16(out, magic)
	out = append(out, '\r', '\n')
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, n)
	return append(out, b...), nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// Write encodes p to w.
func (p *Program) Write(w io.Writer, magic uint16) error {
	data, err := p.Encode(magic)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Magic returns the magic number in the header of data.
func Magic(data []byte) (uint16, error) {
	if len(data) < headerSize || data[2] != '\r' || data[3] != '\n' {
		return 0, ErrNotArtifact
	}
	return binary.LittleEndian.Uint16(data), nil
}

// Decode decodes an artifact, which must have been compiled for the
// target with the given magic number.
func Decode(data []byte, magic uint16) (*Program, error) {
	got, err := Magic(data)
	if err != nil {
		return nil, err
	}
	if got != magic {
		return nil, &MagicError{Got: got, Want: magic}
	}
	n := binary.LittleEndian.Uint32(data[8:])
	payload := data[headerSize:]
	if uint64(len(payload)) != uint64(n) {
		return nil, errors.Wrapf(ErrNotArtifact, "payload is %d bytes, header says %d", len(payload), n)
	}

	p := new(Program)
	version := uint64(0)
	err = fields(payload, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldFilename && typ == protowire.BytesType:
			return consumeString(b, &p.Filename)
		case num == fieldModule && typ == protowire.BytesType:
			return consumeString(b, &p.Module)
		case num == fieldDeps && typ == protowire.BytesType:
			var d string
			n, err := consumeString(b, &d)
			p.Deps = append(p.Deps, d)
			return n, err
		case num == fieldGlobals && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			g, err := decodeGlobal(msg)
			p.Globals = append(p.Globals, g)
			return n, err
		case num == fieldCode && typ == protowire.BytesType:
			return consumeString(b, &p.Code)
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			version = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, errors.Errorf("unsupported artifact encoding version %d", version)
	}
	return p, nil
}

func decodeGlobal(b []byte) (Global, error) {
	var g Global
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldGlobalName && typ == protowire.BytesType:
			return consumeString(b, &g.Name)
		case num == fieldGlobalType && typ == protowire.BytesType:
			return consumeString(b, &g.Type)
		case num == fieldGlobalPublic && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			g.Public = v != 0
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return g, err
}

// fields calls f for each field of the message b. f returns the length
// of the field value it consumed, or a negative protowire error code.
func fields(b []byte, f func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "decoding field tag")
		}
		b = b[n:]
		m, err := f(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return errors.Wrapf(protowire.ParseError(m), "decoding field %d", num)
		}
		b = b[m:]
	}
	return nil
}

func consumeString(b []byte, s *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*s = v
	}
	return n, nil
}
