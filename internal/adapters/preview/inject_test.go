package preview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjectReload(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		injected    bool
	}{
		{name: "html page", path: "/index.html", contentType: "text/html; charset=utf-8", body: "<body>x</body>", injected: true},
		{name: "directory index", path: "/blog/", contentType: "text/html", body: "<body>x</body>", injected: true},
		{name: "no body tag", path: "/index.html", contentType: "text/html", body: "<p>x</p>"},
		{name: "stylesheet", path: "/main.css", contentType: "text/css", body: "</body>"},
		{name: "json served at html path", path: "/data.html", contentType: "application/json", body: "</body>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			})

			rec := httptest.NewRecorder()
			injectReload(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			if tt.injected {
				assert.Equal(t, strings.Replace(tt.body, "</body>", clientScript+"</body>", 1), rec.Body.String())
			} else {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestInjectReload_KeepsStatus(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<body>gone</body>"))
	})

	rec := httptest.NewRecorder()
	injectReload(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), clientScript)
}
