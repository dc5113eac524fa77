package transform

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// AddVersionExported exports addVersion for testing.
func AddVersionExported(doc []byte, token string) []byte {
	return addVersion(doc, token)
}

// VersionTokenExported exports versionToken for testing.
func VersionTokenExported(hasher ports.Hasher, settings domain.Settings) (string, error) {
	return versionToken(hasher, settings)
}

// TargetExported exports target for testing.
func TargetExported(req ports.TransformRequest, file, ext string) string {
	return target(req, file, ext)
}

// InlineStyleExported exports inlineStyle for testing.
func InlineStyleExported(doc, marker, css []byte) ([]byte, error) {
	return inlineStyle(doc, marker, css)
}

// ExpandCommandExported exports expandCommand for testing.
func ExpandCommandExported(tmpl, in, out string) []string {
	return expandCommand(tmpl, in, out)
}
