package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/logging"
	"github.com/treevol/treevol/internal/server"
	"github.com/treevol/treevol/internal/worker"
)

// Fetcher 是 Handler 依赖的拦截能力，由 worker.Worker 实现。
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Handler 把 Fiber 请求转换为 *http.Request 交给 worker，再把 worker 的响应
// （网络、缓存或合成）原样写回客户端。
type Handler struct {
	fetcher Fetcher
	logger  *logrus.Logger
}

// NewHandler constructs a proxy handler around the cache worker.
func NewHandler(fetcher Fetcher, logger *logrus.Logger) *Handler {
	return &Handler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Handle 实现 server.ProxyHandler。
func (h *Handler) Handle(c fiber.Ctx, site *server.Site) error {
	started := time.Now()
	requestID := server.RequestID(c)

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	uri := c.Request().URI()
	target := site.Resolve(string(uri.Path()), string(uri.QueryString()))
	req, err := buildUpstreamRequest(ctx, c, target.String(), site)
	if err != nil {
		h.logResult(c, target.String(), requestID, 0, nil, started, err)
		return writeError(c, fiber.StatusBadRequest, "invalid_request")
	}

	resp, err := h.fetcher.Fetch(ctx, req)
	if err != nil {
		h.logResult(c, target.String(), requestID, 0, nil, started, err)
		return writeError(c, fiber.StatusBadGateway, "upstream_failed")
	}
	defer resp.Body.Close()

	copyResponseHeaders(c, resp.Header)
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	c.Status(resp.StatusCode)

	if c.Method() == http.MethodHead {
		h.logResult(c, target.String(), requestID, resp.StatusCode, resp.Header, started, nil)
		return nil
	}

	_, err = io.Copy(c.Response().BodyWriter(), resp.Body)
	h.logResult(c, target.String(), requestID, resp.StatusCode, resp.Header, started, err)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, fmt.Sprintf("proxy stream failed: %v", err))
	}
	return nil
}

func buildUpstreamRequest(ctx context.Context, c fiber.Ctx, target string, site *server.Site) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if raw := c.Body(); len(raw) > 0 {
		body = bytesReader(append([]byte(nil), raw...))
	}

	req, err := http.NewRequestWithContext(ctx, c.Method(), target, body)
	if err != nil {
		return nil, err
	}

	server.CopyHeaders(req.Header, fiberHeadersAsHTTP(c))
	req.Header.Del("Host")
	req.Header.Del("Accept-Encoding")
	req.Header.Set("X-Forwarded-Host", c.Hostname())
	if ip := c.IP(); ip != "" {
		if prior := req.Header.Get("X-Forwarded-For"); prior != "" {
			req.Header.Set("X-Forwarded-For", prior+", "+ip)
		} else {
			req.Header.Set("X-Forwarded-For", ip)
		}
	}
	req.Header.Set("X-Forwarded-Proto", c.Scheme())
	req.Header.Set("X-Forwarded-Port", fmt.Sprintf("%d", site.ListenPort))
	return req, nil
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

func (h *Handler) logResult(
	c fiber.Ctx,
	upstream string,
	requestID string,
	status int,
	header http.Header,
	started time.Time,
	err error,
) {
	fields := logging.RequestFields(
		c.Method(),
		string(c.Request().URI().Path()),
		upstream,
		status,
		header.Get(worker.HeaderCache),
		header.Get(worker.HeaderSource),
	)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if err != nil {
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("proxy_failed")
		return
	}
	h.logger.WithFields(fields).Info("proxy_complete")
}

func bytesReader(b []byte) io.Reader {
	if len(b) == 0 {
		return http.NoBody
	}
	return bytes.NewReader(b)
}

func fiberHeadersAsHTTP(c fiber.Ctx) http.Header {
	header := http.Header{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})
	return header
}

func copyResponseHeaders(c fiber.Ctx, headers http.Header) {
	for key, values := range headers {
		if server.IsHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			c.Response().Header.Add(key, value)
		}
	}
}
