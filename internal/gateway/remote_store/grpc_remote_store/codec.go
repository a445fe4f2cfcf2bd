package grpc_remote_store

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

var _ encoding.Codec = frameCodec{}

// frame is an undecoded reply body.
type frame []byte

// frameCodec marshals requests as proto and hands replies back raw,
// so a reply that fails to decode is told apart from a status sent by the server.
type frameCodec struct{}

func (frameCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("marshaling %T: not a proto message", v)
	}
	return proto.Marshal(m)
}

func (frameCodec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*frame)
	if !ok {
		return fmt.Errorf("unmarshaling into %T: not a frame", v)
	}
	*f = append((*f)[:0], data...)
	return nil
}

func (frameCodec) Name() string {
	return "proto"
}
