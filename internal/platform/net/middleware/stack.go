package middleware

import (
	"compress/flate"
	"net/http"
	"time"
)

// CommonStack returns the baseline middleware slice shared by all mounted modules
// compose with route-specific middleware as needed in main
func CommonStack(cors CORSOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		RequestID(),
		RealIP(),

		// safety
		RecoverJSON,

		// observability
		AccessLogZerolog(AccessLogOptions{Slow: 500 * time.Millisecond}),

		CORS(cors),
		Compress(flate.BestSpeed),
		Heartbeat("/health"),
		RedirectSlashes(),
		StripSlashes(),
		Timeout(30 * time.Second),
	}
}
