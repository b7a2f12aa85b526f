package ipp

import "encoding/binary"

// maxCollectionDepth bounds collection nesting; deeper input is rejected
// as malformed (spec §4.1, §5).
const maxCollectionDepth = 16

// decodeFrame is one level of "current collection scope." The decoder
// models collection nesting as an explicit stack of scopes rather than
// recursing over bytes (spec §9 design note).
type decodeFrame struct {
	attr              *Attribute
	valueIndex        int
	pendingMemberName string
}

// Decode parses an IPP wire byte stream into a Message (spec §4.2).
// Decoding is all-or-nothing: on any error, decoding stops and the error
// is returned; no partial message is produced.
func Decode(data []byte) (*Message, error) {
	if len(data) < 8 {
		return nil, parseErr(ErrTruncatedInput, len(data), "message shorter than the 8-byte fixed header")
	}

	m := &Message{
		VersionMajor:      data[0],
		VersionMinor:      data[1],
		OperationOrStatus: int16(binary.BigEndian.Uint16(data[2:4])),
		RequestID:         int32(binary.BigEndian.Uint32(data[4:8])),
	}

	offset := 8
	var currentGroup *Group
	var stack []*decodeFrame

	for {
		if offset >= len(data) {
			return nil, parseErr(ErrTruncatedInput, offset, "missing end-of-attributes-tag")
		}
		tag := Tag(data[offset])
		tagOffset := offset
		offset++

		if tag == TagEndOfAttrs {
			if len(stack) != 0 {
				return nil, parseErr(ErrCollectionUnderflow, tagOffset, "end-of-attributes inside an open collection")
			}
			m.Data = append([]byte(nil), data[offset:]...)
			return m, nil
		}

		if tag.IsDelimiter() {
			if len(stack) != 0 {
				return nil, parseErr(ErrCollectionUnderflow, tagOffset, "attribute-group delimiter inside an open collection")
			}
			currentGroup = m.Group(tag)
			continue
		}

		if !tag.isValueTag() {
			return nil, parseErr(ErrUnknownTag, tagOffset, "")
		}

		name, value, next, err := readNameValue(data, offset)
		if err != nil {
			return nil, err
		}
		offset = next

		switch tag {
		case TagEndCollection:
			if len(stack) == 0 {
				return nil, parseErr(ErrCollectionUnderflow, tagOffset, "endCollection without matching begCollection")
			}
			stack = stack[:len(stack)-1]
			continue

		case TagMemberAttrName:
			if len(stack) == 0 {
				return nil, parseErr(ErrCollectionUnderflow, tagOffset, "memberAttrName outside a collection")
			}
			stack[len(stack)-1].pendingMemberName = string(value)
			continue
		}

		v, err := decodeValuePayload(tag, value, offset)
		if err != nil {
			return nil, err
		}

		_, attr, valueIdx, err := attach(currentGroup, stack, name, v, tagOffset)
		if err != nil {
			return nil, err
		}

		if tag == TagBegCollection {
			if len(stack) >= maxCollectionDepth {
				return nil, parseErr(ErrCollectionOverflow, tagOffset, "")
			}
			stack = append(stack, &decodeFrame{attr: attr, valueIndex: valueIdx})
		}
	}
}

// attach records v as a value, either of a top-level attribute in group
// (when stack is empty) or of a member inside the innermost open
// collection (stack's top frame). It returns the attribute/member the
// value was attached to and the value's index within it, so a begCollection
// value can be located again by a pushed decodeFrame.
func attach(group *Group, stack []*decodeFrame, name string, v Value, offset int) (isNewMember bool, attr *Attribute, valueIndex int, err error) {
	if len(stack) == 0 {
		if group == nil {
			return false, nil, 0, parseErr(ErrTruncatedInput, offset, "value before any attribute-group delimiter")
		}
		if name == "" {
			if len(group.Attributes) == 0 {
				return false, nil, 0, parseErr(ErrTruncatedInput, offset, "additional value with no preceding attribute")
			}
			a := group.Attributes[len(group.Attributes)-1]
			a.Values = append(a.Values, v)
			return false, a, len(a.Values) - 1, nil
		}
		a := NewAttribute(name, v)
		group.Attributes = append(group.Attributes, a)
		return true, a, 0, nil
	}

	frame := stack[len(stack)-1]
	container := &frame.attr.Values[frame.valueIndex]

	if frame.pendingMemberName != "" {
		member := NewAttribute(frame.pendingMemberName, v)
		container.Members = append(container.Members, member)
		frame.pendingMemberName = ""
		return true, member, 0, nil
	}
	if len(container.Members) == 0 {
		return false, nil, 0, parseErr(ErrTruncatedInput, offset, "additional collection value with no preceding member")
	}
	member := container.Members[len(container.Members)-1]
	member.Values = append(member.Values, v)
	return false, member, len(member.Values) - 1, nil
}

// readNameValue reads one name-length/name/value-length/value quartet,
// returning the byte offset just past it.
func readNameValue(data []byte, offset int) (name string, value []byte, next int, err error) {
	if offset+2 > len(data) {
		return "", nil, 0, parseErr(ErrTruncatedInput, offset, "missing name-length")
	}
	nameLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if nameLen > 255 {
		return "", nil, 0, parseErr(ErrNameTooLong, offset, "")
	}
	if offset+nameLen > len(data) {
		return "", nil, 0, parseErr(ErrTruncatedInput, offset, "name runs past end of buffer")
	}
	nameBytes := data[offset : offset+nameLen]
	if nameLen > 0 && !isASCIIBytes(nameBytes) {
		return "", nil, 0, parseErr(ErrNonASCIIName, offset, "")
	}
	offset += nameLen

	if offset+2 > len(data) {
		return "", nil, 0, parseErr(ErrTruncatedInput, offset, "missing value-length")
	}
	valueLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if offset+valueLen > len(data) {
		return "", nil, 0, parseErr(ErrValueLengthOverflow, offset, "")
	}
	valueBytes := data[offset : offset+valueLen]
	offset += valueLen

	return string(nameBytes), valueBytes, offset, nil
}

func decodeValuePayload(tag Tag, value []byte, offset int) (Value, error) {
	switch tag.category() {
	case categoryOutOfBand:
		return Value{Tag: tag}, nil

	case categoryInteger:
		if tag == TagBoolean {
			if len(value) != 1 {
				return Value{}, parseErr(ErrValueLengthOverflow, offset, "boolean value must be 1 byte")
			}
			return Value{Tag: tag, Bool: value[0] != 0}, nil
		}
		if len(value) != 4 {
			return Value{}, parseErr(ErrValueLengthOverflow, offset, "integer/enum value must be 4 bytes")
		}
		return Value{Tag: tag, Int: int32(binary.BigEndian.Uint32(value))}, nil

	case categoryCollectionOpen:
		return Value{Tag: tag}, nil

	case categoryOctet, categoryCharString:
		switch tag {
		case TagResolution:
			if len(value) != 9 {
				return Value{}, parseErr(ErrValueLengthOverflow, offset, "resolution value must be 9 bytes")
			}
			return Value{Tag: tag, Res: Resolution{
				CrossFeed: int32(binary.BigEndian.Uint32(value[0:4])),
				Feed:      int32(binary.BigEndian.Uint32(value[4:8])),
				Units:     value[8],
			}}, nil
		case TagRangeOfInteger:
			if len(value) != 8 {
				return Value{}, parseErr(ErrValueLengthOverflow, offset, "rangeOfInteger value must be 8 bytes")
			}
			return Value{Tag: tag, Range: IntRange{
				Lower: int32(binary.BigEndian.Uint32(value[0:4])),
				Upper: int32(binary.BigEndian.Uint32(value[4:8])),
			}}, nil
		case TagTextWithLanguage, TagNameWithLanguage:
			lang, text, err := splitLangText(value)
			if err != nil {
				return Value{}, err
			}
			return Value{Tag: tag, Lang: lang, Text: text}, nil
		default:
			return Value{Tag: tag, Text: string(value)}, nil
		}

	default:
		return Value{Tag: tag, Text: string(value)}, nil
	}
}

// splitLangText parses the [lang-length][lang][text-length][text] body
// of a *WithLanguage value.
func splitLangText(value []byte) (lang, text string, err error) {
	if len(value) < 2 {
		return "", "", parseErr(ErrTruncatedInput, 0, "textWithLanguage/nameWithLanguage value too short")
	}
	langLen := int(binary.BigEndian.Uint16(value[0:2]))
	if 2+langLen+2 > len(value) {
		return "", "", parseErr(ErrTruncatedInput, 0, "textWithLanguage/nameWithLanguage language field overruns value")
	}
	lang = string(value[2 : 2+langLen])
	rest := value[2+langLen:]
	textLen := int(binary.BigEndian.Uint16(rest[0:2]))
	if 2+textLen > len(rest) {
		return "", "", parseErr(ErrTruncatedInput, 0, "textWithLanguage/nameWithLanguage text field overruns value")
	}
	text = string(rest[2 : 2+textLen])
	return lang, text, nil
}

func isASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c > 127 {
			return false
		}
	}
	return true
}
