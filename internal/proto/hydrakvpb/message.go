package hydrakvpb

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message wraps a dynamic message of the KVService contract with typed accessors.
// Accessors panic on unknown field names: those are programming errors.
type Message struct {
	*dynamicpb.Message
}

// New returns an empty message of the given contract type.
func New(name string) Message {
	md := file.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		panic(fmt.Sprintf("hydrakvpb: unknown message %q", name))
	}
	return Message{dynamicpb.NewMessage(md)}
}

func (m Message) field(name string) protoreflect.FieldDescriptor {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("hydrakvpb: %s has no field %q", m.Descriptor().Name(), name))
	}
	return fd
}

func (m Message) SetString(name, v string) Message {
	m.Set(m.field(name), protoreflect.ValueOfString(v))
	return m
}

func (m Message) SetInt64(name string, v int64) Message {
	m.Set(m.field(name), protoreflect.ValueOfInt64(v))
	return m
}

func (m Message) SetBool(name string, v bool) Message {
	m.Set(m.field(name), protoreflect.ValueOfBool(v))
	return m
}

func (m Message) GetString(name string) string {
	return m.Get(m.field(name)).String()
}

func (m Message) GetInt64(name string) int64 {
	return m.Get(m.field(name)).Int()
}

func (m Message) GetBool(name string) bool {
	return m.Get(m.field(name)).Bool()
}
