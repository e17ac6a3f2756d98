package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// GzipRequestMiddleware decompresses gzip-encoded request bodies so handlers
// can work with plain JSON. The decompressed stream is capped at maxBytes;
// invalid gzip payloads are rejected with a 400 response.
func GzipRequestMiddleware(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !hasGzipEncoding(req.Header.Get(echo.HeaderContentEncoding)) {
				return next(c)
			}

			body := req.Body
			gr, err := gzip.NewReader(body)
			if err != nil {
				_ = body.Close()
				return echo.NewHTTPError(http.StatusBadRequest, "invalid gzip body")
			}

			req.Body = &limitedGzipBody{reader: io.LimitReader(gr, maxBytes), gz: gr, body: body}
			req.ContentLength = -1
			req.Header.Del(echo.HeaderContentEncoding)
			req.Header.Del(echo.HeaderContentLength)

			return next(c)
		}
	}
}

func hasGzipEncoding(header string) bool {
	if header == "" {
		return false
	}
	for _, enc := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(enc), "gzip") {
			return true
		}
	}
	return false
}

type limitedGzipBody struct {
	reader io.Reader
	gz     *gzip.Reader
	body   io.Closer
}

func (b *limitedGzipBody) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

func (b *limitedGzipBody) Close() error {
	var err error
	if b.gz != nil {
		err = b.gz.Close()
	}
	if b.body != nil {
		if cerr := b.body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
