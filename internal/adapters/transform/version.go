package transform

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/net/html"
)

// versionedExts are the asset types that receive a cache-busting token.
var versionedExts = map[string]bool{
	".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true, ".avif": true,
}

// versionedAttrs lists, per element, the attributes holding asset references.
var versionedAttrs = map[string][]string{
	"link":    {"href"},
	"script":  {"src"},
	"img":     {"src"},
	"amp-img": {"src"},
	"source":  {"src"},
}

// versionSources selects the files hashed for the "auto" token, relative to the source directory.
const versionSources = "**/*.{css,scss,sass,js}"

// versionToken resolves the configured token. "auto" hashes the source stylesheets and scripts.
func versionToken(hasher ports.Hasher, settings domain.Settings) (string, error) {
	if settings.Version != domain.VersionAuto {
		return settings.Version, nil
	}
	if hasher == nil {
		return "", zerr.New("auto version token requires a hasher")
	}

	src := settings.SourcePath()
	matches, err := doublestar.Glob(os.DirFS(src), versionSources, doublestar.WithFilesOnly())
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to list versioned sources"), "dir", src)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = abs(src, m)
	}
	token, err := hasher.HashFiles(paths)
	if err != nil {
		return "", err
	}
	if len(token) > 8 {
		token = token[:8]
	}
	return token, nil
}

// addVersion appends ?v=token to every local asset reference in doc.
// Only the rewritten attribute values change; all other bytes are kept as written.
func addVersion(doc []byte, token string) []byte {
	if token == "" {
		return doc
	}

	var out bytes.Buffer
	out.Grow(len(doc))

	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			// Keep whatever the tokenizer could not consume.
			out.Write(z.Raw())
			break
		}

		// Reading attributes rewrites the tokenizer buffer in place.
		raw := bytes.Clone(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		tok := z.Token()
		keys := versionedAttrs[tok.Data]
		if len(keys) == 0 {
			out.Write(raw)
			continue
		}

		rewritten := string(raw)
		for _, attr := range tok.Attr {
			if !contains(keys, attr.Key) || !isLocalAsset(attr.Val) {
				continue
			}
			rewritten = replaceAttrValue(rewritten, attr.Key, attr.Val, withVersion(attr.Val, token))
		}
		out.WriteString(rewritten)
	}
	return out.Bytes()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// isLocalAsset reports whether ref is a relative or root-relative reference to a versioned asset type.
func isLocalAsset(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "#") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	if u.Query().Has("v") {
		return false
	}
	return versionedExts[strings.ToLower(path.Ext(u.Path))]
}

func withVersion(ref, token string) string {
	frag := ""
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref, frag = ref[:i], ref[i:]
	}
	sep := "?"
	if strings.Contains(ref, "?") {
		sep = "&"
	}
	return ref + sep + "v=" + token + frag
}

// replaceAttrValue swaps the first occurrence of val after key= in the raw tag.
// Values written with entities are left unchanged.
func replaceAttrValue(tag, key, val, replacement string) string {
	lower := strings.ToLower(tag)
	start := 0
	for {
		i := strings.Index(lower[start:], key)
		if i < 0 {
			return tag
		}
		i += start
		rest := strings.TrimLeft(tag[i+len(key):], " \t\n\r\f")
		if i > 0 && strings.ContainsRune(" \t\n\r\f", rune(tag[i-1])) && strings.HasPrefix(rest, "=") {
			offset := len(tag) - len(rest)
			if j := strings.Index(tag[offset:], val); j >= 0 {
				j += offset
				return tag[:j] + replacement + tag[j+len(val):]
			}
			return tag
		}
		start = i + len(key)
	}
}
