package ipp

import (
	"bytes"
	"reflect"
	"testing"
)

func TestEncodeGetPrinterAttributesSkeleton(t *testing.T) {
	// spec §8 scenario S2.
	m := NewMessage(0x000B, 1)
	op := m.Group(TagOperationAttrs)
	op.Set("attributes-charset", NewCharset("utf-8"))
	op.Set("attributes-natural-language", NewNaturalLanguage("en"))
	op.Set("printer-uri", NewURI("ipp://host/ipp/print"))

	got, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wantPrefix := []byte{0x02, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x01, byte(TagOperationAttrs)}
	if !bytes.Equal(got[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("prefix = % X, want % X", got[:len(wantPrefix)], wantPrefix)
	}
	if got[len(got)-1] != byte(TagEndOfAttrs) {
		t.Fatalf("last byte = %#x, want end-of-attributes-tag", got[len(got)-1])
	}

	decoded, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Data) != 0 {
		t.Fatalf("Data = %v, want empty", decoded.Data)
	}
	if decoded.RequestID != 1 || decoded.OperationOrStatus != 0x000B {
		t.Fatalf("decoded header mismatch: %+v", decoded)
	}
}

func TestMediaColCollectionRoundTrip(t *testing.T) {
	// spec §8 scenario S5 (collection attribute, nested media-size).
	xDim := NewAttribute("x-dimension", NewInteger(21000))
	yDim := NewAttribute("y-dimension", NewInteger(29700))
	mediaSize := NewAttribute("media-size", NewCollection(xDim, yDim))
	mediaCol := NewAttribute("media-col", NewCollection(mediaSize))

	m := NewMessage(0x0002, 7)
	m.Group(TagJobAttrs).Attributes = append(m.Group(TagJobAttrs).Attributes, mediaCol)

	encoded, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got := decoded.Group(TagJobAttrs).Get("media-col")
	if got == nil {
		t.Fatalf("media-col attribute missing after round trip")
	}
	if len(got.Values) != 1 || !got.Values[0].IsCollection() {
		t.Fatalf("media-col did not decode as a single collection value: %+v", got)
	}
	members := got.Values[0].Members
	if len(members) != 1 || members[0].Name != "media-size" {
		t.Fatalf("media-size member missing: %+v", members)
	}
	inner := members[0].Values[0].Members
	if len(inner) != 2 || inner[0].Name != "x-dimension" || inner[1].Name != "y-dimension" {
		t.Fatalf("media-size members mismatch: %+v", inner)
	}
	if inner[0].Values[0].Int != 21000 || inner[1].Values[0].Int != 29700 {
		t.Fatalf("dimension values mismatch: %+v", inner)
	}
}

func TestRoundTripAllValueTypes(t *testing.T) {
	// spec §8 property 1: decode(encode(M)) == M as an attribute-tree
	// equality, preserving group/attribute/value order.
	m := NewMessage(0x000B, 42)

	op := m.Group(TagOperationAttrs)
	op.Set("attributes-charset", NewCharset("utf-8"))
	op.Set("attributes-natural-language", NewNaturalLanguage("en"))
	op.Set("printer-uri", NewURI("ipp://printer.local/ipp/print"))
	op.Add("document-format-supported", NewMimeMediaType("image/pwg-raster"))
	op.Get("document-format-supported").Add(NewMimeMediaType("image/urf"))

	job := m.Group(TagJobAttrs)
	job.Set("copies", NewInteger(3))
	job.Set("job-state", NewEnum(5))
	job.Set("multiple-document-handling", NewKeyword("single-document"))
	job.Set("my-octets", NewOctetString([]byte{0x00, 0xFF, 0x10}))
	job.Set("printer-resolution", NewResolution(600, 600, 3))
	job.Set("copies-supported", NewRange(1, 99))
	job.Set("job-sheets-col", NewTextWithLanguage("en-us", "banner page"))
	job.Set("requester-name", NewNameWithLanguage("en-us", "alice"))
	job.Set("finishings-default", NewUnsupported())

	data := []byte{0x01, 0x02, 0x03, 0xFF, 0x00}
	m.Data = data

	encoded, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(decoded.Data, data) {
		t.Fatalf("Data mismatch: got %v want %v", decoded.Data, data)
	}
	if decoded.RequestID != 42 || decoded.OperationOrStatus != 0x000B {
		t.Fatalf("header mismatch: %+v", decoded)
	}

	wantOp := m.Group(TagOperationAttrs)
	gotOp := decoded.Group(TagOperationAttrs)
	if len(gotOp.Attributes) != len(wantOp.Attributes) {
		t.Fatalf("operation-attributes count mismatch: got %d want %d", len(gotOp.Attributes), len(wantOp.Attributes))
	}
	for i, wantAttr := range wantOp.Attributes {
		gotAttr := gotOp.Attributes[i]
		if gotAttr.Name != wantAttr.Name {
			t.Fatalf("attribute[%d].Name = %q, want %q", i, gotAttr.Name, wantAttr.Name)
		}
		if len(gotAttr.Values) != len(wantAttr.Values) {
			t.Fatalf("attribute %q value count = %d, want %d", wantAttr.Name, len(gotAttr.Values), len(wantAttr.Values))
		}
		for j := range wantAttr.Values {
			if !reflect.DeepEqual(gotAttr.Values[j], wantAttr.Values[j]) {
				t.Fatalf("attribute %q value[%d] = %+v, want %+v", wantAttr.Name, j, gotAttr.Values[j], wantAttr.Values[j])
			}
		}
	}

	wantJob := m.Group(TagJobAttrs)
	gotJob := decoded.Group(TagJobAttrs)
	for _, name := range []string{
		"copies", "job-state", "multiple-document-handling", "my-octets",
		"printer-resolution", "copies-supported", "job-sheets-col",
		"requester-name", "finishings-default",
	} {
		w := wantJob.Get(name)
		g := gotJob.Get(name)
		if g == nil {
			t.Fatalf("job attribute %q missing after round trip", name)
		}
		if !reflect.DeepEqual(g.Values, w.Values) {
			t.Errorf("job attribute %q = %+v, want %+v", name, g.Values, w.Values)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ErrorKind
	}{
		{
			name: "too short",
			data: []byte{0x02, 0x00, 0x00, 0x0B},
			kind: ErrTruncatedInput,
		},
		{
			name: "missing end-of-attributes",
			data: []byte{0x02, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x01},
			kind: ErrTruncatedInput,
		},
		{
			name: "endCollection without begCollection",
			data: append(
				[]byte{0x02, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x01, byte(TagOperationAttrs)},
				byte(TagEndCollection), 0x00, 0x00, 0x00, 0x00,
			),
			kind: ErrCollectionUnderflow,
		},
		{
			name: "reserved tag",
			data: append(
				[]byte{0x02, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x01, byte(TagOperationAttrs)},
				0x60, 0x00, 0x00, 0x00, 0x00,
			),
			kind: ErrUnknownTag,
		},
		{
			name: "value length overflow",
			data: append(
				[]byte{0x02, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x01, byte(TagOperationAttrs)},
				byte(TagInteger), 0x00, 0x01, 'x', 0x00, 0x10,
			),
			kind: ErrValueLengthOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatalf("Decode: expected error, got nil")
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if pe.Kind != tt.kind {
				t.Fatalf("error kind = %s, want %s", pe.Kind, tt.kind)
			}
		})
	}
}

func TestCollectionDepthCap(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.Write([]byte{0x02, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x01})
	buf.WriteByte(byte(TagOperationAttrs))

	// Open one more level of nesting than the cap permits.
	buf.WriteByte(byte(TagBegCollection))
	buf.Write([]byte{0x00, 0x03})
	buf.WriteString("top")
	buf.Write([]byte{0x00, 0x00})

	for i := 0; i < maxCollectionDepth; i++ {
		buf.WriteByte(byte(TagMemberAttrName))
		buf.Write([]byte{0x00, 0x00, 0x00, 0x01})
		buf.WriteString("m")
		buf.WriteByte(byte(TagBegCollection))
		buf.Write([]byte{0x00, 0x00, 0x00, 0x00})
	}

	_, err := Decode(buf.Bytes())
	if err == nil {
		t.Fatalf("expected CollectionOverflow, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrCollectionOverflow {
		t.Fatalf("error = %v, want CollectionOverflow", err)
	}
}

func TestSetOverwritesAddAppends(t *testing.T) {
	g := &Group{Tag: TagOperationAttrs}
	g.Set("x", NewInteger(1))
	g.Set("x", NewInteger(2))
	if got := g.Get("x"); len(got.Values) != 1 || got.Values[0].Int != 2 {
		t.Fatalf("Set should overwrite, got %+v", got)
	}

	g2 := &Group{Tag: TagOperationAttrs}
	g2.Add("y", NewInteger(1))
	g2.Add("y", NewInteger(2))
	if got := g2.Get("y"); len(got.Values) != 2 || got.Values[0].Int != 1 || got.Values[1].Int != 2 {
		t.Fatalf("Add should append, got %+v", got)
	}
}
