package edge

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	apputil "github.com/launchkit/saas-console/internal/httputil"
	"github.com/launchkit/saas-console/internal/logging"
)

// NewProxy builds the reverse proxy that forwards guarded requests to the
// app upstream. Failures to reach the upstream surface as a JSON 502 so
// browser clients get the same error shape as the backend produces.
func NewProxy(upstreamURL string, logger *logging.Logger) (http.Handler, error) {
	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream unreachable", "upstream", upstream.Host, "path", r.URL.Path, "error", err.Error())
		apputil.RespondError(w, "upstream unavailable", http.StatusBadGateway)
	}

	return proxy, nil
}
