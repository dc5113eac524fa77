package domain

import "go.trai.ch/zerr"

var (
	// ErrDuplicateTask is returned when registering a task whose name is already taken.
	ErrDuplicateTask = zerr.New("task already registered")

	// ErrUnknownTask is returned when a task reference does not resolve in the registry.
	ErrUnknownTask = zerr.New("unknown task")

	// ErrCycleDetected is returned when composite tasks reference each other in a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrInvalidMode is returned when a composite declares a mode other than sequential or parallel.
	ErrInvalidMode = zerr.New("invalid composite mode, expected 'sequential' or 'parallel'")

	// ErrUnknownTransformKind is returned when a transform declares a kind with no implementation.
	ErrUnknownTransformKind = zerr.New("unknown transform kind")

	// ErrInvalidPattern is returned when a path set contains a malformed glob.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrEmptyPathSet is returned when a path set has no inclusion pattern.
	ErrEmptyPathSet = zerr.New("path set has no inclusion pattern")

	// ErrTransformFailed is returned when a transform's apply step fails.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrParallelRunFailed is returned when one or more members of a parallel run fail.
	ErrParallelRunFailed = zerr.New("parallel run failed")

	// ErrMissingArtifact is returned when the inline-css step cannot read its stylesheet.
	ErrMissingArtifact = zerr.New("missing stylesheet artifact")

	// ErrMissingInlineMarker is returned when a markup file has no inline style region.
	ErrMissingInlineMarker = zerr.New("inline style marker not found")

	// ErrAlreadyServing is returned when a preview session is started twice.
	ErrAlreadyServing = zerr.New("preview session already serving")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidSettings is returned when build settings fail validation.
	ErrInvalidSettings = zerr.New("invalid build settings")

	// ErrCleanFailed is returned when the output root cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output root")

	// ErrBuildFailed is returned when the full build fails.
	ErrBuildFailed = zerr.New("build failed")

	// ErrOptimizeFailed is returned when the batch post-optimizer reports failures.
	ErrOptimizeFailed = zerr.New("optimize failed")

	// ErrNotAMPDocument is returned when a document lacks the amp attribute on its html element.
	ErrNotAMPDocument = zerr.New("document is not an AMP document")

	// ErrInputResolutionFailed is returned when a path set cannot be resolved to files.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrFileReadFailed is returned when a source or output file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrFileWriteFailed is returned when an output file cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write file")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrWatcherFailed is returned when the file system watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")
)
