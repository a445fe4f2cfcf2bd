package hydrakv

import (
	"github.com/horockey/hydrakv/internal/gateway/remote_store"
	"github.com/horockey/hydrakv/internal/model"
	"github.com/horockey/hydrakv/internal/processor"
	"github.com/horockey/hydrakv/internal/repository/api_keys"
)

type (
	Processor         = processor.Processor
	Gateway           = remote_store.Gateway
	APIKeysRepository = api_keys.Repository
	Entry             = model.Entry
	Transport         = model.Transport
)

const (
	TransportHTTP = model.TransportHTTP
	TransportGRPC = model.TransportGRPC
)
