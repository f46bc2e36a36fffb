package fixed

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/nfnt/resize"

	"github.com/scrayosnet/passage/pkg/adapters"
)

const faviconSize = 64

// Status is a fixed StatusAdapter serving a single configured server
// status, with the operator-supplied favicon normalized to 64x64 on
// first use.
type Status struct {
	cfg ServerStatusConfig

	faviconOnce sync.Once
	faviconB64  string
	faviconErr  error
}

// NewStatus builds a Status from parsed YAML configuration.
func NewStatus(cfg ServerStatusConfig) *Status {
	return &Status{cfg: cfg}
}

func (s *Status) favicon() (string, error) {
	s.faviconOnce.Do(func() {
		if s.cfg.FaviconPath == "" {
			return
		}
		s.faviconB64, s.faviconErr = loadAndResizeFavicon(s.cfg.FaviconPath)
	})
	return s.faviconB64, s.faviconErr
}

func loadAndResizeFavicon(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fixed: open favicon: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("fixed: decode favicon: %w", err)
	}

	resized := resize.Resize(faviconSize, faviconSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("fixed: encode favicon: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Status returns the fixed server status; it never suppresses the
// response.
func (s *Status) Status(context.Context, adapters.Endpoint) (*adapters.ServerStatus, error) {
	favicon, err := s.favicon()
	if err != nil {
		return nil, err
	}
	online := 0
	max := s.cfg.MaxPlayers
	return &adapters.ServerStatus{
		VersionName:    s.cfg.VersionName,
		ProtocolNumber: s.cfg.ProtocolNumber,
		PlayersOnline:  &online,
		PlayersMax:     &max,
		Description:    []byte(fmt.Sprintf("%q", s.cfg.Description)),
		FaviconBase64:  favicon,
		EnforcesSecure: &s.cfg.EnforcesSecure,
	}, nil
}

var _ adapters.StatusAdapter = (*Status)(nil)
