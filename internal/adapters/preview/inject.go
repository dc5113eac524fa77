package preview

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
)

// clientScript reloads the page on every reload event and reconnects after errors.
const clientScript = `<script>(() => {
  if (window.__KILN_LR__) return;
  window.__KILN_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    es.addEventListener('reload', () => location.reload());
    es.onerror = () => { es.close(); setTimeout(connect, 1000); };
  }
  connect();
})();</script>`

const maxInjectSize = 4 << 20

// injectReload adds the reload client to HTML pages before </body>.
func injectReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		// The body changes length, so partial responses cannot be served.
		r.Header.Del("Range")
		iw := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(iw, r)
		iw.finish()
	})
}

// injector buffers an HTML response so the client script can be added.
// Other content types and oversized bodies pass through unchanged.
type injector struct {
	http.ResponseWriter
	status      int
	buf         bytes.Buffer
	passthrough bool
	wroteHeader bool
	decided     bool
}

func (i *injector) WriteHeader(code int) {
	i.status = code
	if i.passthrough {
		i.ResponseWriter.WriteHeader(code)
		i.wroteHeader = true
	}
}

func (i *injector) Write(data []byte) (int, error) {
	if !i.decided {
		i.decided = true
		ct := i.Header().Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "text/html") {
			i.pass()
		}
	}
	if i.passthrough {
		return i.ResponseWriter.Write(data)
	}
	if i.buf.Len()+len(data) > maxInjectSize {
		i.pass()
		if _, err := i.ResponseWriter.Write(i.buf.Bytes()); err != nil {
			return 0, err
		}
		i.buf.Reset()
		return i.ResponseWriter.Write(data)
	}
	return i.buf.Write(data)
}

func (i *injector) pass() {
	i.passthrough = true
	i.Header().Del("Content-Length")
	i.ResponseWriter.WriteHeader(i.status)
	i.wroteHeader = true
}

func (i *injector) finish() {
	if i.passthrough {
		if !i.wroteHeader {
			i.ResponseWriter.WriteHeader(i.status)
		}
		return
	}

	body := i.buf.Bytes()
	if idx := bytes.LastIndex(body, []byte("</body>")); idx >= 0 {
		out := make([]byte, 0, len(body)+len(clientScript))
		out = append(out, body[:idx]...)
		out = append(out, clientScript...)
		body = append(out, body[idx:]...)
	}
	i.Header().Set("Content-Length", strconv.Itoa(len(body)))
	i.ResponseWriter.WriteHeader(i.status)
	_, _ = i.ResponseWriter.Write(body)
}
