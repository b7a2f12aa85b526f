package ipp

// Resolution is the cross-feed/feed/unit triple carried by a "resolution"
// value (spec §3). Units: 3 = dots per inch, 4 = dots per centimeter.
type Resolution struct {
	CrossFeed int32
	Feed      int32
	Units     byte
}

// IntRange is the lower/upper pair carried by a "rangeOfInteger" value.
type IntRange struct {
	Lower int32
	Upper int32
}

// Value is a tagged variant holding exactly the fields its Tag implies.
// A parse table (tags.go) maps tag bytes to categories at decode time;
// the struct itself closes over the full IPP value space at compile
// time rather than relying on an untyped payload (spec §9).
type Value struct {
	Tag Tag

	Int  int32  // integer, enum
	Bool bool   // boolean
	Text string // octetString (as raw text), dateTime (11-byte RFC2579 blob), keyword, uri,
	// uriScheme, charset, naturalLanguage, mimeMediaType, text/nameWithoutLanguage,
	// and the untranslated text of text/nameWithLanguage
	Lang    string       // language subtag for *WithLanguage values
	Res     Resolution   // resolution
	Range   IntRange     // rangeOfInteger
	Members []*Attribute // collection members, in order (begCollection/endCollection)
}

// NewInteger builds an "integer" value.
func NewInteger(v int32) Value { return Value{Tag: TagInteger, Int: v} }

// NewBoolean builds a "boolean" value.
func NewBoolean(v bool) Value { return Value{Tag: TagBoolean, Bool: v} }

// NewEnum builds an "enum" value. Enums are a distinct wire tag from
// integer despite sharing a 4-byte encoding (spec §3).
func NewEnum(v int32) Value { return Value{Tag: TagEnum, Int: v} }

// NewOctetString builds an "octetString" value from raw bytes.
func NewOctetString(b []byte) Value { return Value{Tag: TagOctetString, Text: string(b)} }

// NewKeyword builds a "keyword" value.
func NewKeyword(s string) Value { return Value{Tag: TagKeyword, Text: s} }

// NewURI builds a "uri" value.
func NewURI(s string) Value { return Value{Tag: TagURI, Text: s} }

// NewURIScheme builds a "uriScheme" value.
func NewURIScheme(s string) Value { return Value{Tag: TagURIScheme, Text: s} }

// NewCharset builds a "charset" value.
func NewCharset(s string) Value { return Value{Tag: TagCharset, Text: s} }

// NewNaturalLanguage builds a "naturalLanguage" value.
func NewNaturalLanguage(s string) Value { return Value{Tag: TagNaturalLanguage, Text: s} }

// NewMimeMediaType builds a "mimeMediaType" value.
func NewMimeMediaType(s string) Value { return Value{Tag: TagMimeMediaType, Text: s} }

// NewTextWithoutLanguage builds a "textWithoutLanguage" value.
func NewTextWithoutLanguage(s string) Value { return Value{Tag: TagTextWithoutLanguage, Text: s} }

// NewNameWithoutLanguage builds a "nameWithoutLanguage" value.
func NewNameWithoutLanguage(s string) Value { return Value{Tag: TagNameWithoutLanguage, Text: s} }

// NewTextWithLanguage builds a "textWithLanguage" value.
func NewTextWithLanguage(lang, text string) Value {
	return Value{Tag: TagTextWithLanguage, Lang: lang, Text: text}
}

// NewNameWithLanguage builds a "nameWithLanguage" value.
func NewNameWithLanguage(lang, text string) Value {
	return Value{Tag: TagNameWithLanguage, Lang: lang, Text: text}
}

// NewDateTime builds a "dateTime" value from its raw 11-byte RFC 2579
// representation.
func NewDateTime(raw [11]byte) Value { return Value{Tag: TagDateTime, Text: string(raw[:])} }

// NewResolution builds a "resolution" value.
func NewResolution(crossFeed, feed int32, units byte) Value {
	return Value{Tag: TagResolution, Res: Resolution{CrossFeed: crossFeed, Feed: feed, Units: units}}
}

// NewRange builds a "rangeOfInteger" value.
func NewRange(lower, upper int32) Value {
	return Value{Tag: TagRangeOfInteger, Range: IntRange{Lower: lower, Upper: upper}}
}

// NewCollection builds a "collection" value from its ordered members.
func NewCollection(members ...*Attribute) Value {
	return Value{Tag: TagBegCollection, Members: members}
}

// out-of-band sentinel values, carrying no payload on the wire.
func NewUnsupported() Value { return Value{Tag: TagUnsupported} }
func NewUnknown() Value     { return Value{Tag: TagUnknown} }
func NewNoValue() Value     { return Value{Tag: TagNoValue} }
func NewDefault() Value     { return Value{Tag: TagDefault} }

// IsCollection reports whether v holds a collection.
func (v Value) IsCollection() bool { return v.Tag == TagBegCollection }

// IsOutOfBand reports whether v is one of the unsupported/unknown/
// no-value/default sentinels.
func (v Value) IsOutOfBand() bool { return v.Tag.category() == categoryOutOfBand }
