// Package export encodes diagram text into URLs of online viewers.
//
// Every viewer receives the diagram compressed with zlib at the best
// compression level and encoded as unpadded base64url. Mermaid Live Editor
// and mermaid.ink expect the diagram wrapped in a small JSON state document
// first; Kroki and Edotor take the compressed text as is. The same bytes and
// service always produce the same URL.
package export

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/render"
)

// Service is an online diagram viewer.
type Service int

const (
	MermaidLiveView Service = iota
	MermaidLiveEdit
	MermaidInkSvg
	MermaidInkPng
	MermaidInkJpg
	MermaidInkWebp
	MermaidKrokiPng
	MermaidKrokiSvg
	GraphvizEdotor
	GraphvizKrokiSvg
	GraphvizKrokiPng
	GraphvizKrokiJpg
	GraphvizKrokiPdf
)

type serviceInfo struct {
	name    string
	prefix  string // URL before the payload
	suffix  string // URL after the payload
	wrapped bool   // payload is the JSON state document
	format  render.Format
}

var services = []serviceInfo{
	MermaidLiveView:  {"mermaid-live-view", "https://mermaid.live/view#pako:", "", true, render.FormatMermaid},
	MermaidLiveEdit:  {"mermaid-live-edit", "https://mermaid.live/edit#pako:", "", true, render.FormatMermaid},
	MermaidInkSvg:    {"mermaid-ink-svg", "https://mermaid.ink/svg/pako:", "", true, render.FormatMermaid},
	MermaidInkPng:    {"mermaid-ink-png", "https://mermaid.ink/img/pako:", "?type=png", true, render.FormatMermaid},
	MermaidInkJpg:    {"mermaid-ink-jpg", "https://mermaid.ink/img/pako:", "?type=jpeg", true, render.FormatMermaid},
	MermaidInkWebp:   {"mermaid-ink-webp", "https://mermaid.ink/img/pako:", "?type=webp", true, render.FormatMermaid},
	MermaidKrokiPng:  {"mermaid-kroki-png", "https://kroki.io/mermaid/png/", "", false, render.FormatMermaid},
	MermaidKrokiSvg:  {"mermaid-kroki-svg", "https://kroki.io/mermaid/svg/", "", false, render.FormatMermaid},
	GraphvizEdotor:   {"graphviz-edotor", "https://edotor.net/#deflate:", "", false, render.FormatGraphviz},
	GraphvizKrokiSvg: {"graphviz-kroki-svg", "https://kroki.io/graphviz/svg/", "", false, render.FormatGraphviz},
	GraphvizKrokiPng: {"graphviz-kroki-png", "https://kroki.io/graphviz/png/", "", false, render.FormatGraphviz},
	GraphvizKrokiJpg: {"graphviz-kroki-jpg", "https://kroki.io/graphviz/jpeg/", "", false, render.FormatGraphviz},
	GraphvizKrokiPdf: {"graphviz-kroki-pdf", "https://kroki.io/graphviz/pdf/", "", false, render.FormatGraphviz},
}

// Services returns every service, in declaration order.
func Services() []Service {
	out := make([]Service, len(services))
	for i := range services {
		out[i] = Service(i)
	}
	return out
}

func (s Service) info() (serviceInfo, bool) {
	if s < 0 || int(s) >= len(services) {
		return serviceInfo{}, false
	}
	return services[s], true
}

// String returns the service name, e.g. "mermaid-live-view".
func (s Service) String() string {
	if info, ok := s.info(); ok {
		return info.name
	}
	return fmt.Sprintf("Service(%d)", int(s))
}

// Format returns the diagram language the service renders.
func (s Service) Format() render.Format {
	info, _ := s.info()
	return info.format
}

// Wrapped reports whether the payload is the JSON state document.
func (s Service) Wrapped() bool {
	info, _ := s.info()
	return info.wrapped
}

// ParseService looks a service up by its name.
func ParseService(name string) (Service, error) {
	for i, info := range services {
		if strings.EqualFold(info.name, name) {
			return Service(i), nil
		}
	}
	return 0, nerrors.New(nerrors.ErrCodeInvalidFormat, "unknown service %q", name)
}

// Encode returns the viewer URL for diagram text.
func Encode(data []byte, s Service) (string, error) {
	info, ok := s.info()
	if !ok {
		return "", nerrors.New(nerrors.ErrCodeInvalidFormat, "unknown service %d", int(s))
	}
	payload, err := Payload(data, info.wrapped)
	if err != nil {
		return "", err
	}
	return info.prefix + payload + info.suffix, nil
}

// Payload compresses data, wrapped in the state document when asked, and
// returns it base64url encoded without padding.
func Payload(data []byte, wrapped bool) (string, error) {
	if wrapped {
		env, err := envelope(data)
		if err != nil {
			return "", err
		}
		data = env
	}

	var buf bytes.Buffer
	buf.Grow(2048)
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(data); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// state is the Mermaid Live Editor document. Field order is part of the
// encoding; mermaid holds the configuration as embedded JSON text.
type state struct {
	Code    string `json:"code"`
	Mermaid string `json:"mermaid"`
	PanZoom bool   `json:"panZoom"`
}

const defaultMermaidConfig = `{"theme":"default"}`

func envelope(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state{Code: string(data), Mermaid: defaultMermaidConfig, PanZoom: true}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode is the inverse of Encode: it recognizes the service from the URL and
// returns the diagram text.
func Decode(uri string) ([]byte, error) {
	uri = strings.TrimSpace(uri)
	for _, info := range services {
		if !strings.HasPrefix(uri, info.prefix) || !strings.HasSuffix(uri, info.suffix) {
			continue
		}
		payload := uri[len(info.prefix) : len(uri)-len(info.suffix)]
		if strings.ContainsAny(payload, "?#/") {
			continue
		}
		return DecodePayload(payload, info.wrapped)
	}
	return nil, nerrors.New(nerrors.ErrCodeInvalidFormat, "not a diagram viewer URL: %s", uri)
}

// DecodePayload reverses Payload.
func DecodePayload(payload string, wrapped bool) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidFormat, err, "decode base64 payload")
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidFormat, err, "decompress payload")
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidFormat, err, "decompress payload")
	}
	if !wrapped {
		return data, nil
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidFormat, err, "decode state document")
	}
	return []byte(st.Code), nil
}
