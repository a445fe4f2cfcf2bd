// Package hydrakvpb holds the HydraKV gRPC contract.
//
// The descriptor is assembled at init from descriptorpb messages and messages
// are handled as dynamicpb values, so no generated code is needed on either
// side of the wire. The encoding is plain proto3.
package hydrakvpb

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	Package     = "hydrakv"
	ServiceName = Package + ".KVService"
)

// Message names.
const (
	MsgOkResponse            = "OkResponse"
	MsgSetRequest            = "SetRequest"
	MsgGetRequest            = "GetRequest"
	MsgGetResponse           = "GetResponse"
	MsgIncrRequest           = "IncrRequest"
	MsgIncrResponse          = "IncrResponse"
	MsgDeleteRequest         = "DeleteRequest"
	MsgFiFoLiFoPushRequest   = "FiFoLiFoPushRequest"
	MsgFiFoLiFoPopRequest    = "FiFoLiFoPopRequest"
	MsgFiFoLiFoPopResponse   = "FiFoLiFoPopResponse"
	MsgFiFoLiFoDeleteRequest = "FiFoLiFoDeleteRequest"
)

// Method describes one unary RPC of KVService.
type Method struct {
	Name   string
	Input  string
	Output string
}

// FullName returns the path used by grpc.ClientConn.Invoke.
func (m Method) FullName() string {
	return "/" + ServiceName + "/" + m.Name
}

var (
	MethodSet            = Method{"Set", MsgSetRequest, MsgOkResponse}
	MethodGet            = Method{"Get", MsgGetRequest, MsgGetResponse}
	MethodSetNX          = Method{"SetNX", MsgSetRequest, MsgOkResponse}
	MethodIncr           = Method{"Incr", MsgIncrRequest, MsgIncrResponse}
	MethodDelete         = Method{"Delete", MsgDeleteRequest, MsgOkResponse}
	MethodFiFoLiFoPush   = Method{"FiFoLiFoPush", MsgFiFoLiFoPushRequest, MsgOkResponse}
	MethodFiFoLiFoFPop   = Method{"FiFoLiFoFPop", MsgFiFoLiFoPopRequest, MsgFiFoLiFoPopResponse}
	MethodFiFoLiFoLPop   = Method{"FiFoLiFoLPop", MsgFiFoLiFoPopRequest, MsgFiFoLiFoPopResponse}
	MethodFiFoLiFoDelete = Method{"FiFoLiFoDelete", MsgFiFoLiFoDeleteRequest, MsgOkResponse}
)

// Methods lists every RPC of KVService.
var Methods = []Method{
	MethodSet,
	MethodGet,
	MethodSetNX,
	MethodIncr,
	MethodDelete,
	MethodFiFoLiFoPush,
	MethodFiFoLiFoFPop,
	MethodFiFoLiFoLPop,
	MethodFiFoLiFoDelete,
}

type field struct {
	name string
	typ  descriptorpb.FieldDescriptorProto_Type
}

func str(name string) field {
	return field{name, descriptorpb.FieldDescriptorProto_TYPE_STRING}
}

func i64(name string) field {
	return field{name, descriptorpb.FieldDescriptorProto_TYPE_INT64}
}

func boolean(name string) field {
	return field{name, descriptorpb.FieldDescriptorProto_TYPE_BOOL}
}

var messages = []struct {
	name   string
	fields []field
}{
	{MsgOkResponse, []field{boolean("ok")}},
	{MsgSetRequest, []field{str("db"), str("apikey"), str("key"), str("value"), i64("ttl")}},
	{MsgGetRequest, []field{str("db"), str("apikey"), str("key")}},
	{MsgGetResponse, []field{str("value")}},
	{MsgIncrRequest, []field{str("db"), str("apikey"), str("key"), str("amount")}},
	{MsgIncrResponse, []field{i64("value")}},
	{MsgDeleteRequest, []field{str("db"), str("apikey"), str("key")}},
	{MsgFiFoLiFoPushRequest, []field{str("name"), str("value")}},
	{MsgFiFoLiFoPopRequest, []field{str("name")}},
	{MsgFiFoLiFoPopResponse, []field{str("value")}},
	{MsgFiFoLiFoDeleteRequest, []field{str("name")}},
}

var file protoreflect.FileDescriptor

func init() {
	fd, err := buildFile()
	if err != nil {
		panic(fmt.Errorf("building hydrakv descriptor: %w", err))
	}
	file = fd
}

func buildFile() (protoreflect.FileDescriptor, error) {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("hydrakv.proto"),
		Package: proto.String(Package),
		Syntax:  proto.String("proto3"),
	}

	for _, m := range messages {
		mdp := &descriptorpb.DescriptorProto{Name: proto.String(m.name)}
		for i, f := range m.fields {
			mdp.Field = append(mdp.Field, &descriptorpb.FieldDescriptorProto{
				Name:     proto.String(f.name),
				JsonName: proto.String(f.name),
				Number:   proto.Int32(int32(i + 1)),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:     f.typ.Enum(),
			})
		}
		fdp.MessageType = append(fdp.MessageType, mdp)
	}

	sdp := &descriptorpb.ServiceDescriptorProto{Name: proto.String("KVService")}
	for _, m := range Methods {
		sdp.Method = append(sdp.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.Name),
			InputType:  proto.String("." + Package + "." + m.Input),
			OutputType: proto.String("." + Package + "." + m.Output),
		})
	}
	fdp.Service = []*descriptorpb.ServiceDescriptorProto{sdp}

	return protodesc.NewFile(fdp, new(protoregistry.Files))
}

// File returns the KVService file descriptor.
func File() protoreflect.FileDescriptor {
	return file
}
