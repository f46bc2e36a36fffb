package grpcadapter

import "github.com/scrayosnet/passage/pkg/adapters"

// targetDTO is the wire shape of adapters.Target; net.TCPAddr doesn't
// marshal to JSON the way a backend would naturally emit it, so targets
// cross the wire as host/port strings instead.
type targetDTO struct {
	Identifier string            `json:"identifier"`
	Host       string            `json:"host"`
	Port       int               `json:"port"`
	Metadata   map[string]string `json:"metadata"`
}

func toDTO(t adapters.Target) targetDTO {
	return targetDTO{
		Identifier: t.Identifier,
		Host:       t.Address.IP.String(),
		Port:       t.Address.Port,
		Metadata:   t.Metadata,
	}
}

func (d targetDTO) toTarget() (adapters.Target, error) {
	addr, err := parseHostPort(d.Host, d.Port)
	if err != nil {
		return adapters.Target{}, err
	}
	return adapters.Target{Identifier: d.Identifier, Address: addr, Metadata: d.Metadata}, nil
}

type endpointDTO struct {
	ClientAddr string `json:"client_addr"`
	ServerHost string `json:"server_host"`
	ServerPort uint16 `json:"server_port"`
	Protocol   int32  `json:"protocol"`
}

func toEndpointDTO(ep adapters.Endpoint) endpointDTO {
	var clientAddr string
	if ep.ClientAddr != nil {
		clientAddr = ep.ClientAddr.String()
	}
	return endpointDTO{
		ClientAddr: clientAddr,
		ServerHost: ep.ServerHost,
		ServerPort: ep.ServerPort,
		Protocol:   ep.Protocol,
	}
}

type identityDTO struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

func toIdentityDTO(id adapters.Identity) identityDTO {
	return identityDTO{Name: id.Name, UUID: id.UUID}
}

// discoverRequest is sent with no fields; discovery takes no parameters.
type discoverRequest struct{}

type discoverResponse struct {
	Targets []targetDTO `json:"targets"`
}

type strategizeRequest struct {
	Endpoint endpointDTO `json:"endpoint"`
	User     identityDTO `json:"user"`
	Targets  []targetDTO `json:"targets"`
}

type strategizeResponse struct {
	Target *targetDTO `json:"target"`
}
