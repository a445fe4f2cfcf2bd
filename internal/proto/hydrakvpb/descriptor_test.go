package hydrakvpb_test

import (
	"testing"

	"github.com/horockey/hydrakv/internal/proto/hydrakvpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestFile_ServiceMethods(t *testing.T) {
	sd := hydrakvpb.File().Services().ByName("KVService")
	require.NotNil(t, sd)
	assert.Equal(t, protoreflect.FullName(hydrakvpb.ServiceName), sd.FullName())
	assert.Equal(t, len(hydrakvpb.Methods), sd.Methods().Len())

	for _, m := range hydrakvpb.Methods {
		md := sd.Methods().ByName(protoreflect.Name(m.Name))
		require.NotNil(t, md, m.Name)
		assert.Equal(t, m.Input, string(md.Input().Name()))
		assert.Equal(t, m.Output, string(md.Output().Name()))
	}
}

func TestMethod_FullName(t *testing.T) {
	assert.Equal(t, "/hydrakv.KVService/SetNX", hydrakvpb.MethodSetNX.FullName())
}

func TestMessage_WireRoundTrip(t *testing.T) {
	req := hydrakvpb.New(hydrakvpb.MsgSetRequest).
		SetString("db", "t1").
		SetString("key", "a").
		SetString("value", "v1").
		SetInt64("ttl", 60)

	data, err := proto.Marshal(req)
	require.NoError(t, err)

	got := hydrakvpb.New(hydrakvpb.MsgSetRequest)
	require.NoError(t, proto.Unmarshal(data, got))

	assert.Equal(t, "t1", got.GetString("db"))
	assert.Equal(t, "a", got.GetString("key"))
	assert.Equal(t, "v1", got.GetString("value"))
	assert.Equal(t, int64(60), got.GetInt64("ttl"))
	assert.Equal(t, "", got.GetString("apikey"))
}

func TestNew_UnknownMessagePanics(t *testing.T) {
	assert.Panics(t, func() { hydrakvpb.New("Nope") })
	assert.Panics(t, func() { hydrakvpb.New(hydrakvpb.MsgOkResponse).GetString("missing") })
}

func TestFile_LifecycleNotInService(t *testing.T) {
	sd := hydrakvpb.File().Services().ByName("KVService")
	require.NotNil(t, sd)

	for _, name := range []string{"CreateDB", "DeleteDB", "DBExists", "RenewAPIKey", "FiFoLiFoCreate"} {
		assert.Nil(t, sd.Methods().ByName(protoreflect.Name(name)), name)
	}
}
