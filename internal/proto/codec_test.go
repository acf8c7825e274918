package proto

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecIsRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_HistoryResponse(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	in := &HistoryResponse{Messages: []*Message{{ID: "m1", Kind: "direct", SenderID: "a", RecipientUserID: "b", Content: "hi", CreatedAt: at}}}

	data, err := Codec{}.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recipient_user_id":"b"`)
	assert.NotContains(t, string(data), "read_at")

	out := &HistoryResponse{}
	require.NoError(t, Codec{}.Unmarshal(data, out))
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_EmptyPayload(t *testing.T) {
	out := &Empty{}
	assert.NoError(t, Codec{}.Unmarshal(nil, out))
	assert.Error(t, Codec{}.Unmarshal([]byte("{"), out))
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/taskhub.v1.Session/Login", FullMethod("Login"))
	assert.Len(t, SessionServiceDesc.Methods, 11)
}
