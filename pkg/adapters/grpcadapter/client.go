package grpcadapter

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"google.golang.org/grpc"

	"github.com/scrayosnet/passage/pkg/adapters"
)

// Discovery method/response paths. Backends implement a plain gRPC
// service at these methods; the JSON codec means any server stack that
// speaks gRPC-over-HTTP/2 can answer them, not just Go/protoc ones.
const (
	discoverMethod   = "/passage.Discovery/Discover"
	strategizeMethod = "/passage.Strategy/Strategize"
)

// GRPCDiscovery implements adapters.DiscoveryAdapter by invoking a remote
// gRPC method over a shared connection, for dynamic (e.g.
// Kubernetes/Agones-fed) target sets served by an external backend.
type GRPCDiscovery struct {
	conn *grpc.ClientConn
}

// NewGRPCDiscovery wraps an already-dialed connection. Callers own the
// connection's lifecycle (dial options, keepalive, TLS).
func NewGRPCDiscovery(conn *grpc.ClientConn) *GRPCDiscovery {
	return &GRPCDiscovery{conn: conn}
}

// Discover calls the remote Discover method and converts its response
// into adapters.Target values.
func (d *GRPCDiscovery) Discover(ctx context.Context) ([]adapters.Target, error) {
	var resp discoverResponse
	if err := d.conn.Invoke(ctx, discoverMethod, discoverRequest{}, &resp, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, fmt.Errorf("grpcadapter: discover: %w", err)
	}
	targets := make([]adapters.Target, 0, len(resp.Targets))
	for _, dto := range resp.Targets {
		t, err := dto.toTarget()
		if err != nil {
			return nil, fmt.Errorf("grpcadapter: discover: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// GRPCStrategy implements adapters.StrategyAdapter the same way, handing
// the already-filtered candidate list to a remote decision service.
type GRPCStrategy struct {
	conn *grpc.ClientConn
}

// NewGRPCStrategy wraps an already-dialed connection.
func NewGRPCStrategy(conn *grpc.ClientConn) *GRPCStrategy {
	return &GRPCStrategy{conn: conn}
}

// Strategize calls the remote Strategize method with the endpoint, user
// identity and candidate targets, and returns its chosen target, or nil
// if the backend reports none acceptable.
func (s *GRPCStrategy) Strategize(ctx context.Context, ep adapters.Endpoint, user adapters.Identity, targets []adapters.Target) (*adapters.Target, error) {
	req := strategizeRequest{
		Endpoint: toEndpointDTO(ep),
		User:     toIdentityDTO(user),
		Targets:  make([]targetDTO, 0, len(targets)),
	}
	for _, t := range targets {
		req.Targets = append(req.Targets, toDTO(t))
	}

	var resp strategizeResponse
	if err := s.conn.Invoke(ctx, strategizeMethod, req, &resp, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, fmt.Errorf("grpcadapter: strategize: %w", err)
	}
	if resp.Target == nil {
		return nil, nil
	}
	target, err := resp.Target.toTarget()
	if err != nil {
		return nil, fmt.Errorf("grpcadapter: strategize: %w", err)
	}
	return &target, nil
}

func parseHostPort(host string, port int) (net.TCPAddr, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		return net.TCPAddr{}, fmt.Errorf("grpcadapter: %q is not an IP literal", host)
	}
	if port < 0 || port > 65535 {
		return net.TCPAddr{}, fmt.Errorf("grpcadapter: invalid port %s", strconv.Itoa(port))
	}
	return net.TCPAddr{IP: ip, Port: port}, nil
}

var (
	_ adapters.DiscoveryAdapter = (*GRPCDiscovery)(nil)
	_ adapters.StrategyAdapter  = (*GRPCStrategy)(nil)
)
