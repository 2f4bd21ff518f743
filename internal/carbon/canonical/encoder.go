// Package canonical converts blocks and chains to and from their textual JSON forms.
//
// Two layouts share one set of scalar rules. The hash layout (EncodeBlock) sorts object
// keys and escapes every non-ASCII rune, so equal blocks always yield equal bytes. The
// document layout (MarshalChain) keeps declared field order and writes non-ASCII text
// verbatim. Both use ", " and ": " separators and write reals in shortest round-trip
// form with a ".0" suffix on integral values, which is how chain documents already in
// the backend were written.
package canonical

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

const (
	keyIndex        = "index"
	keyTimestamp    = "timestamp"
	keyTransactions = "transactions"
	keyProof        = "proof"
	keyPreviousHash = "previous_hash"

	keyDate       = "date"
	keyMachine    = "machine"
	keyFertilizer = "fertilizer"
	keyAmount     = "amount"
	keyEmission   = "emission"
)

type member struct {
	key   string
	value any
}

type object []member

type layout struct {
	sortKeys  bool
	asciiOnly bool
}

var (
	hashLayout     = layout{sortKeys: true, asciiOnly: true}
	documentLayout = layout{sortKeys: false, asciiOnly: false}
)

// EncodeBlock returns the hash input for b.
func EncodeBlock(b model.Block) []byte {
	var buf bytes.Buffer
	hashLayout.write(&buf, blockObject(b))
	return buf.Bytes()
}

// MarshalChain returns the document stored in the chain store for chain.
func MarshalChain(chain []model.Block) []byte {
	blocks := make([]any, 0, len(chain))
	for _, b := range chain {
		blocks = append(blocks, blockObject(b))
	}
	var buf bytes.Buffer
	documentLayout.write(&buf, blocks)
	return buf.Bytes()
}

func blockObject(b model.Block) object {
	txs := make([]any, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, object{
			{keyDate, tx.Date},
			{keyMachine, string(tx.Machine)},
			{keyFertilizer, tx.Fertilizer},
			{keyAmount, tx.Amount},
			{keyEmission, tx.Emission},
		})
	}
	return object{
		{keyIndex, b.Index},
		{keyTimestamp, b.Timestamp},
		{keyTransactions, txs},
		{keyProof, b.Proof},
		{keyPreviousHash, b.PreviousHash},
	}
}

func (l layout) write(buf *bytes.Buffer, v any) {
	switch value := v.(type) {
	case object:
		members := value
		if l.sortKeys {
			members = append(object(nil), value...)
			sort.SliceStable(members, func(i, j int) bool { return members[i].key < members[j].key })
		}
		buf.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				buf.WriteString(", ")
			}
			l.writeString(buf, m.key)
			buf.WriteString(": ")
			l.write(buf, m.value)
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range value {
			if i > 0 {
				buf.WriteString(", ")
			}
			l.write(buf, item)
		}
		buf.WriteByte(']')
	case string:
		l.writeString(buf, value)
	case int:
		buf.WriteString(strconv.Itoa(value))
	case float64:
		buf.WriteString(FormatReal(value))
	default:
		panic(fmt.Sprintf("canonical: unsupported value type %T", v))
	}
}

func (l layout) writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(buf, `\u%04x`, r)
			case l.asciiOnly && r > 0x7e:
				if r > 0xffff {
					r1, r2 := utf16.EncodeRune(r)
					fmt.Fprintf(buf, `\u%04x\u%04x`, r1, r2)
				} else {
					fmt.Fprintf(buf, `\u%04x`, r)
				}
			default:
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// FormatReal writes f in shortest round-trip form. Integral values keep a ".0" suffix
// and magnitudes outside [1e-4, 1e16) switch to exponent notation.
func FormatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	plain := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(plain, '.') {
		plain += ".0"
	}
	return plain
}
