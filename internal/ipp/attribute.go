package ipp

// Attribute is a name plus a non-empty ordered list of values. All values
// of one attribute share a single value-tag category (spec §3).
type Attribute struct {
	Name   string
	Values []Value
}

// Tag returns the value-tag of the attribute's first value, which is the
// tag written on the wire for the whole attribute.
func (a *Attribute) Tag() Tag {
	if len(a.Values) == 0 {
		return TagUnknown
	}
	return a.Values[0].Tag
}

// Add appends an additional value to the attribute.
func (a *Attribute) Add(v Value) {
	a.Values = append(a.Values, v)
}

// NewAttribute builds a single-valued attribute.
func NewAttribute(name string, v Value) *Attribute {
	return &Attribute{Name: name, Values: []Value{v}}
}

// Group is an ordered list of attributes under one delimiter tag
// (spec §3's "attribute group").
type Group struct {
	Tag        Tag
	Attributes []*Attribute
}

// Set overwrites any existing attribute named name in the group with a
// fresh single-valued attribute, or appends a new one if none exists.
// This is the "overwrite-last" semantics spec §9's open question
// recommends naming explicitly, as distinct from Add.
func (g *Group) Set(name string, v Value) *Attribute {
	if a := g.find(name); a != nil {
		a.Values = []Value{v}
		return a
	}
	a := NewAttribute(name, v)
	g.Attributes = append(g.Attributes, a)
	return a
}

// Add appends v as an additional value of the attribute named name,
// creating the attribute (with v as its sole/first value) if it does not
// yet exist. This is the "append-all" semantics from spec §9's open
// question, as distinct from Set.
func (g *Group) Add(name string, v Value) *Attribute {
	if a := g.find(name); a != nil {
		a.Add(v)
		return a
	}
	a := NewAttribute(name, v)
	g.Attributes = append(g.Attributes, a)
	return a
}

// Get returns the attribute named name, or nil.
func (g *Group) Get(name string) *Attribute {
	return g.find(name)
}

func (g *Group) find(name string) *Attribute {
	for _, a := range g.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Walk calls fn for each attribute in the group, in insertion order.
func (g *Group) Walk(fn func(*Attribute)) {
	for _, a := range g.Attributes {
		fn(a)
	}
}

// Message is a full IPP operation request or response (spec §3).
type Message struct {
	VersionMajor byte
	VersionMinor byte

	// OperationOrStatus carries the operation-id on a request and the
	// status-code on a response; both are 16-bit signed on the wire.
	OperationOrStatus int16

	RequestID int32

	// Groups holds one entry per non-empty attribute group, in any
	// order the caller chose; the encoder re-orders them into wire
	// order (operation, job, printer, unsupported) and omits any with
	// zero attributes (spec §4.2).
	Groups []*Group

	// Data is the opaque trailing payload (e.g. a raster document body
	// for Print-Job), or nil.
	Data []byte
}

// NewMessage builds an empty message with the given operation-id/status
// and request-id, defaulting to protocol version 2.0.
func NewMessage(operationOrStatus int16, requestID int32) *Message {
	return &Message{VersionMajor: 2, VersionMinor: 0, OperationOrStatus: operationOrStatus, RequestID: requestID}
}

// Group returns the message's group tagged groupTag, creating and
// appending it (at the end of Groups) if it does not yet exist.
func (m *Message) Group(groupTag Tag) *Group {
	for _, g := range m.Groups {
		if g.Tag == groupTag {
			return g
		}
	}
	g := &Group{Tag: groupTag}
	m.Groups = append(m.Groups, g)
	return g
}

// wireGroupOrder is the fixed order groups are emitted in, per spec §4.2.
var wireGroupOrder = []Tag{TagOperationAttrs, TagJobAttrs, TagPrinterAttrs, TagUnsupportedAttrs}
