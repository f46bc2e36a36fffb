// Package grpcadapter implements DiscoveryAdapter and StrategyAdapter
// over gRPC for deployments that delegate target discovery and selection
// to a remote decision service. Requests/responses are plain Go structs
// carried by a JSON codec registered with grpc, so no protoc step is
// required while the transport remains genuine gRPC (HTTP/2,
// streaming-capable, deadlines).
package grpcadapter

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is passed to grpc.CallContentSubtype so each call uses the
// JSON codec registered below instead of protobuf.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
