package ipp

import (
	"bytes"
	"encoding/binary"
)

// Encode serializes m to its IPP wire byte stream (spec §4.2).
func Encode(m *Message) ([]byte, error) {
	buf := &bytes.Buffer{}

	buf.WriteByte(m.VersionMajor)
	buf.WriteByte(m.VersionMinor)
	if err := binary.Write(buf, binary.BigEndian, m.OperationOrStatus); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, m.RequestID); err != nil {
		return nil, err
	}

	for _, groupTag := range wireGroupOrder {
		g := findGroup(m, groupTag)
		if g == nil || len(g.Attributes) == 0 {
			continue
		}
		buf.WriteByte(byte(g.Tag))
		for _, a := range g.Attributes {
			if err := encodeAttribute(buf, a); err != nil {
				return nil, err
			}
		}
	}

	buf.WriteByte(byte(TagEndOfAttrs))
	buf.Write(m.Data)

	return buf.Bytes(), nil
}

func findGroup(m *Message, tag Tag) *Group {
	for _, g := range m.Groups {
		if g.Tag == tag {
			return g
		}
	}
	return nil
}

func encodeAttribute(buf *bytes.Buffer, a *Attribute) error {
	if len(a.Name) > 255 {
		return encodeErr(ErrNameTooLong, a.Name)
	}
	if !isASCII(a.Name) {
		return encodeErr(ErrNonASCIIName, a.Name)
	}
	if len(a.Values) == 0 {
		return encodeErr(ErrTruncatedInput, a.Name)
	}

	for i, v := range a.Values {
		name := a.Name
		if i > 0 {
			name = ""
		}
		if v.IsCollection() {
			if err := encodeCollection(buf, name, v); err != nil {
				return err
			}
			continue
		}
		if err := encodeSimpleValue(buf, name, v); err != nil {
			return err
		}
	}
	return nil
}

// encodeSimpleValue writes one non-collection value entry: tag, name
// length+bytes, value length+bytes.
func encodeSimpleValue(buf *bytes.Buffer, name string, v Value) error {
	payload, err := encodeValuePayload(v)
	if err != nil {
		return err
	}
	buf.WriteByte(byte(v.Tag))
	writeU16String(buf, name)
	writeU16Bytes(buf, payload)
	return nil
}

func encodeValuePayload(v Value) ([]byte, error) {
	switch v.Tag.category() {
	case categoryOutOfBand:
		return nil, nil
	case categoryInteger:
		if v.Tag == TagBoolean {
			if v.Bool {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v.Int))
		return b, nil
	case categoryOctet, categoryCharString:
		switch v.Tag {
		case TagResolution:
			b := make([]byte, 9)
			binary.BigEndian.PutUint32(b[0:4], uint32(v.Res.CrossFeed))
			binary.BigEndian.PutUint32(b[4:8], uint32(v.Res.Feed))
			b[8] = v.Res.Units
			return b, nil
		case TagRangeOfInteger:
			b := make([]byte, 8)
			binary.BigEndian.PutUint32(b[0:4], uint32(v.Range.Lower))
			binary.BigEndian.PutUint32(b[4:8], uint32(v.Range.Upper))
			return b, nil
		case TagTextWithLanguage, TagNameWithLanguage:
			buf := &bytes.Buffer{}
			writeU16String(buf, v.Lang)
			writeU16String(buf, v.Text)
			return buf.Bytes(), nil
		default:
			return []byte(v.Text), nil
		}
	default:
		return []byte(v.Text), nil
	}
}

// encodeCollection writes begCollection, one memberAttrName + value pair
// per member (recursively), then endCollection (spec §3, §4.2).
func encodeCollection(buf *bytes.Buffer, name string, v Value) error {
	buf.WriteByte(byte(TagBegCollection))
	writeU16String(buf, name)
	writeU16Bytes(buf, nil)

	for _, member := range v.Members {
		if err := encodeMember(buf, member); err != nil {
			return err
		}
	}

	buf.WriteByte(byte(TagEndCollection))
	writeU16String(buf, "")
	writeU16Bytes(buf, nil)
	return nil
}

func encodeMember(buf *bytes.Buffer, member *Attribute) error {
	if len(member.Values) == 0 {
		return encodeErr(ErrTruncatedInput, member.Name)
	}
	for i, v := range member.Values {
		// memberAttrName entry precedes only the first value; member
		// names live in a side-channel entry, not the value's own name
		// slot (spec §3 Invariants).
		if i == 0 {
			buf.WriteByte(byte(TagMemberAttrName))
			writeU16String(buf, "")
			writeU16String(buf, member.Name)
		}
		name := ""
		if v.IsCollection() {
			if err := encodeCollection(buf, name, v); err != nil {
				return err
			}
			continue
		}
		if err := encodeSimpleValue(buf, name, v); err != nil {
			return err
		}
	}
	return nil
}

func writeU16String(buf *bytes.Buffer, s string) {
	writeU16Bytes(buf, []byte(s))
}

func writeU16Bytes(buf *bytes.Buffer, b []byte) {
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
