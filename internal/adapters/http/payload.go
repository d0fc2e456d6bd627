package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

// mapObjectPayload is one map object as pushed by a client. Scalar fields
// are cast the way the store would cast them (a numeric uid becomes a
// string); a field that cannot be cast is kept as a per-field error and
// surfaces on validation.
type mapObjectPayload struct {
	Type       domain.ObjectType
	UID        string
	Location   *locationPayload
	Properties map[string]any
	Meta       map[string]any

	castErrs map[string]string
}

func (p *mapObjectPayload) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type       json.RawMessage  `json:"type"`
		UID        json.RawMessage  `json:"uid"`
		Location   *locationPayload `json:"location"`
		Properties json.RawMessage  `json:"properties"`
		Meta       json.RawMessage  `json:"meta"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*p = mapObjectPayload{Location: raw.Location}
	if s, ok := castString(raw.Type); ok {
		p.Type = domain.ObjectType(s)
	} else {
		p.castErr("objectType", "String", raw.Type)
	}
	if s, ok := castString(raw.UID); ok {
		p.UID = s
	} else {
		p.castErr("uid", "String", raw.UID)
	}

	props, propsOK := castObject(raw.Properties)
	meta, metaOK := castObject(raw.Meta)
	p.Properties, p.Meta = props, meta
	switch {
	case !propsOK:
		p.castErr("properties", "Object", raw.Properties)
	case isNull(raw.Properties) && !metaOK:
		p.castErr("properties", "Object", raw.Meta)
	}
	return nil
}

func (p *mapObjectPayload) castErr(path, kind string, raw json.RawMessage) {
	if p.castErrs == nil {
		p.castErrs = make(map[string]string)
	}
	p.castErrs[path] = fmt.Sprintf("Cast to %s failed for value %s at path `%s`", kind, raw, path)
}

// toInput converts the payload. properties wins over meta.
func (p *mapObjectPayload) toInput() *domain.MapObjectInput {
	in := &domain.MapObjectInput{
		Type:         p.Type,
		UID:          p.UID,
		Properties:   p.Properties,
		DecodeErrors: p.castErrs,
	}
	if in.Properties == nil {
		in.Properties = p.Meta
	}
	if p.Location != nil && p.Location.ok {
		pt := p.Location.point
		in.Location = &pt
	}
	return in
}

// decodeMapObject decodes one bulk element. An element that is not a JSON
// object still yields an input, carrying the decode failure.
func decodeMapObject(raw json.RawMessage) domain.MapObjectInput {
	var p mapObjectPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.MapObjectInput{DecodeErrors: map[string]string{
			"document": fmt.Sprintf("expected a map object, got %s", raw),
		}}
	}
	return *p.toInput()
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// castString accepts a JSON string, number or boolean.
func castString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), true
	}
	return "", false
}

// castObject accepts a JSON object or null.
func castObject(raw json.RawMessage) (map[string]any, bool) {
	if isNull(raw) {
		return nil, true
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// locationPayload accepts a GeoJSON Point or a {lat, lng} / {lat, lon} object.
// A location of any other shape decodes without error and is reported as
// missing by validation.
type locationPayload struct {
	point domain.GeoPoint
	ok    bool
}

func (l *locationPayload) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
		Lat         *float64  `json:"lat"`
		Lng         *float64  `json:"lng"`
		Lon         *float64  `json:"lon"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		// Not an object (or not numeric); leave unset.
		return nil
	}

	switch {
	case len(raw.Coordinates) == 2 && (raw.Type == "" || raw.Type == "Point"):
		l.point = domain.GeoPoint{Lon: raw.Coordinates[0], Lat: raw.Coordinates[1]}
		l.ok = true
	case raw.Lat != nil && raw.Lng != nil:
		l.point = domain.GeoPoint{Lat: *raw.Lat, Lon: *raw.Lng}
		l.ok = true
	case raw.Lat != nil && raw.Lon != nil:
		l.point = domain.GeoPoint{Lat: *raw.Lat, Lon: *raw.Lon}
		l.ok = true
	}
	return nil
}
