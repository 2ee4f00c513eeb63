// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	merr "github.com/kopexa-grc/magiclink/errors"
)

// CanonicalJSON renders v as byte-deterministic JSON: object keys sorted
// ascending by codepoint at every depth, arrays in given order, no
// insignificant whitespace, unescaped slashes and unicode, and integers
// rendered without a decimal point. Non-finite floats (NaN, ±Inf) are
// rejected with InvalidFormat.
//
// The MAC is computed over base64url(header) + "." + base64url(payload), so
// any implementation-defined ordering here would make two semantically
// identical payloads sign to different bytes and break verification across
// processes.
func CanonicalJSON(v interface{}) ([]byte, error) {
	norm, err := normalize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encodeCanonical(&buf, norm); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeObject parses data as a JSON object and returns it as a
// string-keyed map. A top-level array or scalar fails with InvalidFormat,
// matching the §4.1 decode contract for header/payload segments.
func DecodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, merr.NewInvalidFormatf("json: decode failed", err)
	}

	obj, ok := out.(map[string]interface{})
	if !ok {
		return nil, merr.NewInvalidFormat("json: expected a top-level object")
	}

	return obj, nil
}

// normalize round-trips v through the standard library encoder/decoder so
// that arbitrary Go values (structs, maps, slices, scalars) collapse into
// the small value universe encodeCanonical understands: nil, bool, string,
// json.Number, map[string]interface{}, []interface{}. encoding/json already
// rejects NaN/±Inf float64 fields during Marshal, which doubles as our
// non-finite-float guard.
func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, merr.NewInvalidFormatf("canonical json: value is not JSON-representable", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, merr.NewInvalidFormatf("canonical json: re-decode failed", err)
	}

	return out, nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		return encodeNumber(buf, t)
	case string:
		encodeString(buf, t)
		return nil
	case map[string]interface{}:
		return encodeObject(buf, t)
	case []interface{}:
		return encodeArray(buf, t)
	default:
		return merr.NewInvalidFormat(fmt.Sprintf("canonical json: unsupported value type %T", v))
	}
}

func encodeNumber(buf *bytes.Buffer, n json.Number) error {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return merr.NewInvalidFormatf("canonical json: invalid number literal", err)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return merr.NewInvalidFormat("canonical json: non-finite numbers are not representable")
	}

	// n.String() is already the text encoding/json produced when this value
	// was marshalled, which never carries a trailing ".0" for whole numbers.
	buf.WriteString(n.String())

	return nil
}

func encodeObject(buf *bytes.Buffer, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	buf.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodeString(buf, k)
		buf.WriteByte(':')

		if err := encodeCanonical(buf, m[k]); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

func encodeArray(buf *bytes.Buffer, arr []interface{}) error {
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encodeCanonical(buf, elem); err != nil {
			return err
		}
	}

	buf.WriteByte(']')

	return nil
}

// encodeString writes a JSON string literal escaping only what RFC 8259
// requires: the quote, the backslash, and control characters below 0x20.
// Slashes and non-ASCII codepoints pass through unescaped, unlike
// encoding/json's default HTML-safe escaping.
func encodeString(buf *bytes.Buffer, s string) {
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
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}

	buf.WriteByte('"')
}
