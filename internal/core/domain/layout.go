package domain

const (
	// ConfigFileName is the name of the pipeline configuration file.
	ConfigFileName = "kiln.yaml"

	// DefaultSourceDir is the default source directory.
	DefaultSourceDir = "src"

	// DefaultOutputDir is the default output root.
	DefaultOutputDir = "dist"

	// DefaultInlineMarker is the opening tag of the inline style region in AMP documents.
	DefaultInlineMarker = "<style amp-custom>"

	// DefaultPreviewHost is the default preview server host.
	DefaultPreviewHost = "localhost"

	// DefaultPreviewPort is the default preview server port.
	DefaultPreviewPort = 3000

	// InlineTaskName is the name of the css inlining post-step.
	InlineTaskName = "inject-css"

	// VersionAuto selects a content hash as the version token.
	VersionAuto = "auto"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)
