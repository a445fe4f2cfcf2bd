package model

type Transport string

const (
	TransportHTTP Transport = "http"
	TransportGRPC Transport = "grpc"
)

func (t Transport) String() string {
	return string(t)
}
