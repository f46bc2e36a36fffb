package fixed

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/scrayosnet/passage/pkg/adapters"
)

// Discovery is a static DiscoveryAdapter returning the same configured
// target list on every call.
type Discovery struct {
	targets []adapters.Target
}

// NewDiscovery builds a Discovery from the parsed YAML target list.
func NewDiscovery(configs []TargetConfig) (*Discovery, error) {
	targets := make([]adapters.Target, 0, len(configs))
	for _, c := range configs {
		addr, err := resolveTCPAddr(c.Address)
		if err != nil {
			return nil, fmt.Errorf("fixed: target %q: %w", c.Identifier, err)
		}
		targets = append(targets, adapters.Target{
			Identifier: c.Identifier,
			Address:    addr,
			Metadata:   c.Metadata,
		})
	}
	return &Discovery{targets: targets}, nil
}

func resolveTCPAddr(hostport string) (net.TCPAddr, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return net.TCPAddr{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return net.TCPAddr{}, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return net.TCPAddr{}, fmt.Errorf("host %q is not an IP literal", host)
	}
	return net.TCPAddr{IP: ip, Port: port}, nil
}

// Discover returns a copy of the configured target list.
func (d *Discovery) Discover(context.Context) ([]adapters.Target, error) {
	out := make([]adapters.Target, len(d.targets))
	copy(out, d.targets)
	return out, nil
}

var _ adapters.DiscoveryAdapter = (*Discovery)(nil)
