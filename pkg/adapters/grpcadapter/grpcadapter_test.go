package grpcadapter_test

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/scrayosnet/passage/pkg/adapters"
	"github.com/scrayosnet/passage/pkg/adapters/grpcadapter"
)

// fakeBackend answers both RPCs used by this package without any
// proto-generated service descriptor, dispatching purely on method name.
// This is enough to exercise the JSON codec and DTO conversions end to
// end; a real backend would register generated service stubs instead.
type fakeBackend struct {
	targets []map[string]any
}

func (b *fakeBackend) handle(_ any, stream grpc.ServerStream) error {
	method, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return fmt.Errorf("fakeBackend: no method on stream")
	}

	switch method {
	case "/passage.Discovery/Discover":
		var req map[string]any
		if err := stream.RecvMsg(&req); err != nil {
			return err
		}
		return stream.SendMsg(map[string]any{"targets": b.targets})
	case "/passage.Strategy/Strategize":
		var req map[string]any
		if err := stream.RecvMsg(&req); err != nil {
			return err
		}
		if len(b.targets) == 0 {
			return stream.SendMsg(map[string]any{"target": nil})
		}
		return stream.SendMsg(map[string]any{"target": b.targets[0]})
	default:
		return fmt.Errorf("fakeBackend: unknown method %s", method)
	}
}

func startFakeBackend(t *testing.T, backend *fakeBackend) *grpc.ClientConn {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer(grpc.UnknownServiceHandler(backend.handle))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.Dial(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestGRPCDiscoveryReturnsTargets(t *testing.T) {
	backend := &fakeBackend{targets: []map[string]any{
		{"identifier": "lobby-1", "host": "10.0.0.1", "port": 25565, "metadata": map[string]string{"region": "eu"}},
	}}
	conn := startFakeBackend(t, backend)

	discovery := grpcadapter.NewGRPCDiscovery(conn)
	targets, err := discovery.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "lobby-1", targets[0].Identifier)
	assert.Equal(t, 25565, targets[0].Address.Port)
	assert.Equal(t, "eu", targets[0].Metadata["region"])
}

func TestGRPCStrategizeReturnsTarget(t *testing.T) {
	backend := &fakeBackend{targets: []map[string]any{
		{"identifier": "lobby-1", "host": "10.0.0.1", "port": 25565, "metadata": map[string]string{}},
	}}
	conn := startFakeBackend(t, backend)

	strategy := grpcadapter.NewGRPCStrategy(conn)
	target, err := strategy.Strategize(context.Background(), adapters.Endpoint{}, adapters.Identity{Name: "Hydrofin"}, nil)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "lobby-1", target.Identifier)
}

func TestGRPCStrategizeReturnsNilOnNoCandidates(t *testing.T) {
	backend := &fakeBackend{}
	conn := startFakeBackend(t, backend)

	strategy := grpcadapter.NewGRPCStrategy(conn)
	target, err := strategy.Strategize(context.Background(), adapters.Endpoint{}, adapters.Identity{}, nil)
	require.NoError(t, err)
	assert.Nil(t, target)
}
