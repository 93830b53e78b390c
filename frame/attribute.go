package frame

import "fmt"

// Attribute is the 15-bit tag carried in a control header (bitmask of
// requested payload kinds) and in each logical packet's extended header
// (the single payload kind it carries).
type Attribute uint16

// Known singleton attributes. Values are a bitmask so a request's
// AttributeSet can OR several together.
const (
	Adc              Attribute = 0x0001
	AdcQueue         Attribute = 0x0002
	Settings         Attribute = 0x0004
	PdPacket         Attribute = 0x0008
	PdStatus         Attribute = 0x0010
	QcPacket         Attribute = 0x0020
	Serial           Attribute = 0x0040
	AuthStep         Attribute = 0x0080
	DataRecorderMode Attribute = 0x0100
	StartupInfo      Attribute = 0x0200
	DeviceInfoAttr   Attribute = 0x0400
)

var attributeNames = map[Attribute]string{
	Adc:              "Adc",
	AdcQueue:         "AdcQueue",
	Settings:         "Settings",
	PdPacket:         "PdPacket",
	PdStatus:         "PdStatus",
	QcPacket:         "QcPacket",
	Serial:           "Serial",
	AuthStep:         "AuthStep",
	DataRecorderMode: "DataRecorderMode",
	StartupInfo:      "StartupInfo",
	DeviceInfoAttr:   "DeviceInfo",
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Attribute(0x%04X)", uint16(a))
}

// AttributeSet is the OR of one or more Attribute values used on the
// request side to select which logical packets a response must include.
type AttributeSet uint16

// With returns a new AttributeSet with attr added.
func (s AttributeSet) With(attr Attribute) AttributeSet {
	return s | AttributeSet(attr)
}

// Has reports whether attr is present in the set.
func (s AttributeSet) Has(attr Attribute) bool {
	return uint16(s)&uint16(attr) != 0
}

// NewAttributeSet ORs together the given attributes.
func NewAttributeSet(attrs ...Attribute) AttributeSet {
	var s AttributeSet
	for _, a := range attrs {
		s = s.With(a)
	}
	return s
}
