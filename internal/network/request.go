package network

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"

	"github.com/lcalzada-xor/codeprobe/internal/config"
	"github.com/lcalzada-xor/codeprobe/internal/model"
)

// TransportError reports that the HTTP exchange could not be completed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DefaultHeaders returns the browser-like header set sent with every probe.
func DefaultHeaders() []model.Header {
	return []model.Header{
		{Name: "Accept-Encoding", Value: "gzip, deflate, br"},
		{Name: "Accept", Value: "*/*"},
		{Name: "Accept-Language", Value: "en-US;q=0.9,en;q=0.8"},
		{Name: "User-Agent", Value: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"},
		{Name: "Connection", Value: "close"},
		{Name: "Cache-Control", Value: "max-age=0"},
		{Name: "Content-Type", Value: "application/json"},
	}
}

// NewRequest assembles a probe for target carrying payload.
func NewRequest(target, payload string) model.Request {
	return model.Request{
		TargetURL: target,
		Payload:   payload,
		Headers:   DefaultHeaders(),
	}
}

func newHTTPClient(cfg config.Config) (*http.Client, error) {
	transport, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, nil
}

func buildTransport(cfg config.Config) (*http.Transport, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("unexpected default transport type")
	}

	transport := base.Clone()

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if cfg.Insecure {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		} else {
			transport.TLSClientConfig = transport.TLSClientConfig.Clone()
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	return transport, nil
}

// EncodeBody serialises payload as {"code": payload} without HTML escaping.
func EncodeBody(payload string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(model.CodeDocument{Code: payload}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Send posts the probe once and returns whatever the server answered.
// Every failure is returned as a *TransportError.
func Send(ctx context.Context, cfg config.Config, probe model.Request, log logrus.FieldLogger) (model.Response, error) {
	fail := func(err error) (model.Response, error) {
		return model.Response{}, &TransportError{Err: err}
	}

	client, err := newHTTPClient(cfg)
	if err != nil {
		return fail(err)
	}

	body, err := EncodeBody(probe.Payload)
	if err != nil {
		return fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, probe.TargetURL, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}

	for _, h := range probe.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	// net/http ignores the Connection header on outgoing requests.
	if strings.EqualFold(req.Header.Get("Connection"), "close") {
		req.Close = true
	}

	log.WithFields(logrus.Fields{
		"url":     probe.TargetURL,
		"bytes":   len(body),
		"timeout": cfg.Timeout.String(),
	}).Debug("sending probe")

	resp, err := client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	encoding := resp.Header.Get("Content-Encoding")
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"encoding": encoding,
	}).Debug("response received")

	reader, err := decodeBody(resp)
	if err != nil {
		return fail(fmt.Errorf("decode %s body: %w", encoding, err))
	}
	if reader != resp.Body {
		defer reader.Close()
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fail(err)
	}

	return model.Response{StatusCode: resp.StatusCode, Body: string(data)}, nil
}

func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		return gz, nil
	case "deflate":
		return inflate(resp.Body)
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return resp.Body, nil
	}
}

// inflate reads a deflate-encoded body. Servers disagree on whether that means
// zlib-wrapped or raw DEFLATE, so a bad zlib header falls back to raw.
func inflate(body io.Reader) (io.ReadCloser, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err == nil {
		return zr, nil
	}
	if !errors.Is(err, zlib.ErrHeader) {
		return nil, err
	}

	return flate.NewReader(bytes.NewReader(data)), nil
}
