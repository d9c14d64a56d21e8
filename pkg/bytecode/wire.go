package bytecode

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/starling/pkg/value"
)

// WireVersion is the chunk serialization format version.
const WireVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Kind tags for constants on the wire.
const (
	wireNone = "none"
	wireBool = "bool"
	wireInt  = "int"
	wireStr  = "str"
	wireList = "list"
	wireDict = "dict"
)

type wireValue struct {
	Kind  string      `cbor:"k"`
	Bool  bool        `cbor:"b,omitempty"`
	Int   int64       `cbor:"i,omitempty"`
	Str   string      `cbor:"s,omitempty"`
	Items []wireValue `cbor:"l,omitempty"`
	Pairs []wirePair  `cbor:"d,omitempty"`
}

type wirePair struct {
	Key   wireValue `cbor:"k"`
	Value wireValue `cbor:"v"`
}

type wireChunk struct {
	Version     int         `cbor:"v"`
	Name        string      `cbor:"n"`
	Code        []byte      `cbor:"c"`
	Constants   []wireValue `cbor:"k"`
	Spans       []SpanEntry `cbor:"s,omitempty"`
	LocalCount  uint16      `cbor:"lc"`
	ModuleCount uint16      `cbor:"mc"`
}

func toWireValue(v value.Value) (wireValue, error) {
	switch v := v.(type) {
	case value.NoneType:
		return wireValue{Kind: wireNone}, nil
	case value.Bool:
		return wireValue{Kind: wireBool, Bool: bool(v)}, nil
	case value.Int:
		return wireValue{Kind: wireInt, Int: int64(v)}, nil
	case value.Str:
		return wireValue{Kind: wireStr, Str: string(v)}, nil
	case value.List:
		items := make([]wireValue, 0, len(v))
		for _, elem := range v {
			w, err := toWireValue(elem)
			if err != nil {
				return wireValue{}, err
			}
			items = append(items, w)
		}
		return wireValue{Kind: wireList, Items: items}, nil
	case *value.Dict:
		pairs := make([]wirePair, 0, v.Len())
		var convErr error
		v.All(func(k, val value.Value) bool {
			wk, err := toWireValue(k)
			if err != nil {
				convErr = err
				return false
			}
			wv, err := toWireValue(val)
			if err != nil {
				convErr = err
				return false
			}
			pairs = append(pairs, wirePair{Key: wk, Value: wv})
			return true
		})
		if convErr != nil {
			return wireValue{}, convErr
		}
		return wireValue{Kind: wireDict, Pairs: pairs}, nil
	default:
		return wireValue{}, fmt.Errorf("bytecode: cannot serialize constant of type %s", v.TypeName())
	}
}

func fromWireValue(w wireValue) (value.Value, error) {
	switch w.Kind {
	case wireNone:
		return value.None, nil
	case wireBool:
		return value.Bool(w.Bool), nil
	case wireInt:
		return value.Int(w.Int), nil
	case wireStr:
		return value.Str(w.Str), nil
	case wireList:
		list := make(value.List, 0, len(w.Items))
		for _, item := range w.Items {
			v, err := fromWireValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case wireDict:
		d := value.NewDict()
		for _, pair := range w.Pairs {
			k, err := fromWireValue(pair.Key)
			if err != nil {
				return nil, err
			}
			v, err := fromWireValue(pair.Value)
			if err != nil {
				return nil, err
			}
			d.SetKey(k, v)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("bytecode: unknown constant kind %q on the wire", w.Kind)
	}
}

// MarshalChunk serializes a chunk to canonical CBOR bytes. Identical
// chunks always produce identical bytes, so content hashes are stable.
func MarshalChunk(c *Chunk) ([]byte, error) {
	wc := wireChunk{
		Version:     WireVersion,
		Name:        c.Name,
		Code:        c.Code,
		Spans:       c.Spans,
		LocalCount:  c.LocalCount,
		ModuleCount: c.ModuleCount,
	}
	wc.Constants = make([]wireValue, 0, len(c.Constants))
	for _, v := range c.Constants {
		w, err := toWireValue(v)
		if err != nil {
			return nil, err
		}
		wc.Constants = append(wc.Constants, w)
	}
	return cborEncMode.Marshal(wc)
}

// UnmarshalChunk deserializes a chunk from CBOR bytes.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var wc wireChunk
	if err := cbor.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if wc.Version != WireVersion {
		return nil, fmt.Errorf("bytecode: unsupported chunk version %d (want %d)", wc.Version, WireVersion)
	}
	c := &Chunk{
		Name:        wc.Name,
		Code:        wc.Code,
		Spans:       wc.Spans,
		LocalCount:  wc.LocalCount,
		ModuleCount: wc.ModuleCount,
	}
	c.Constants = make([]value.Value, 0, len(wc.Constants))
	for _, w := range wc.Constants {
		v, err := fromWireValue(w)
		if err != nil {
			return nil, err
		}
		c.Constants = append(c.Constants, v)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate walks the code checking that every instruction's operand bytes
// fit within the buffer and every constant reference fits the pool, so a
// decoded chunk can be disassembled without hitting the in-process
// contract panics reserved for locally built chunks.
func (c *Chunk) validate() error {
	for pc := 0; pc < len(c.Code); {
		op := Opcode(c.Code[pc])
		size := op.InstructionLen()
		if _, known := opcodeInfoTable[op]; !known {
			size = 1
		}
		if pc+size > len(c.Code) {
			return fmt.Errorf("bytecode: truncated %s at %04X (need %d bytes, have %d)",
				op, pc, size, len(c.Code)-pc)
		}
		switch op {
		case OpConst, OpConstDict, OpLoadAttr, OpStoreAttr:
			if idx := c.readU16(pc + 1); int(idx) >= len(c.Constants) {
				return fmt.Errorf("bytecode: %04X %s references constant %d, pool has %d",
					pc, op, idx, len(c.Constants))
			}
		}
		pc += size
	}
	return nil
}

// ChunkHash returns the SHA-256 content hash of a chunk's canonical
// serialization.
func ChunkHash(c *Chunk) ([32]byte, error) {
	data, err := MarshalChunk(c)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
