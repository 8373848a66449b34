/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package wire encodes resource snapshots into the compact JSON document
// the consumer ingests:
//
//	{"ts":<int64 ms>,"tick":<int64>,"resources":{"<id>":<number>,...}}
//
// Keys are written in sorted order so identical snapshots produce identical
// bytes.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/carverauto/statsbridge/pkg/models"
)

const (
	baseSize    = 64
	perItemSize = 24
	hexDigits   = "0123456789abcdef"
)

// Payload is the decoded form of an encoded snapshot.
type Payload struct {
	TS        int64              `json:"ts"`
	Tick      int64              `json:"tick"`
	Resources map[string]float64 `json:"resources"`
}

// Encode serializes a snapshot. A nil or empty map produces "resources":{}.
func Encode(ts, tick int64, resources map[string]float64) ([]byte, error) {
	return Append(make([]byte, 0, baseSize+len(resources)*perItemSize), ts, tick, resources)
}

// EncodeSnapshot serializes the balances of s.
func EncodeSnapshot(s models.Snapshot) ([]byte, error) {
	return Encode(s.TS, s.Tick, s.Quantities())
}

// Append writes the encoded snapshot to dst and returns the extended slice.
// Keys must be valid UTF-8 and values finite. On error dst is returned
// unchanged.
func Append(dst []byte, ts, tick int64, resources map[string]float64) ([]byte, error) {
	keys := make([]string, 0, len(resources))

	for k, v := range resources {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dst, fmt.Errorf("%w: %q=%v", ErrNonFiniteValue, k, v)
		}

		if !utf8.ValidString(k) {
			return dst, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}

		keys = append(keys, k)
	}

	slices.Sort(keys)

	out := append(dst, `{"ts":`...)
	out = strconv.AppendInt(out, ts, 10)
	out = append(out, `,"tick":`...)
	out = strconv.AppendInt(out, tick, 10)
	out = append(out, `,"resources":{`...)

	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}

		out = appendString(out, k)
		out = append(out, ':')
		out = appendFloat(out, resources[k])
	}

	return append(out, "}}"...), nil
}

// Decode parses an encoded snapshot. A missing or null resources object is
// rejected; an empty one decodes to an empty, non-nil map.
func Decode(data []byte) (Payload, error) {
	var raw struct {
		TS        *int64             `json:"ts"`
		Tick      *int64             `json:"tick"`
		Resources map[string]float64 `json:"resources"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Payload{}, fmt.Errorf("%w: trailing data after object", ErrMalformedPayload)
	}

	switch {
	case raw.TS == nil:
		return Payload{}, fmt.Errorf("%w: missing ts", ErrMalformedPayload)
	case raw.Tick == nil:
		return Payload{}, fmt.Errorf("%w: missing tick", ErrMalformedPayload)
	case raw.Resources == nil:
		return Payload{}, fmt.Errorf("%w: missing resources", ErrMalformedPayload)
	}

	return Payload{TS: *raw.TS, Tick: *raw.Tick, Resources: raw.Resources}, nil
}

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if c < ' ' {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])

				continue
			}

			dst = append(dst, c)
		}
	}

	return append(dst, '"')
}

// appendFloat uses the shortest representation that parses back to the same
// float64, switching to exponent form for very small or very large magnitudes.
func appendFloat(dst []byte, f float64) []byte {
	abs := math.Abs(f)
	format := byte('f')

	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	dst = strconv.AppendFloat(dst, f, format, -1, 64)

	if format == 'e' {
		// 1e-07 -> 1e-7
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}

	return dst
}
