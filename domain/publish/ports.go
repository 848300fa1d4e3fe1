package publish

import "context"

// Uploader runs the upload tool against a written manifest.
// This is a port that can be implemented by different infrastructure adapters
type Uploader interface {
	// ToolPath returns the resolved executable path, or ErrToolNotFound
	ToolPath() (string, error)

	// Run stages credentials, invokes the tool and blocks until it exits.
	// A returned error means the tool was never launched (ErrToolNotFound,
	// ErrConfigDecode, ErrConfigStageFailed); launch and exit failures are
	// reported through the result instead.
	Run(ctx context.Context, manifestPath string, cfg UploadConfig, target UploadTarget) (InvocationResult, error)
}

// ManifestWriter writes the app build manifest consumed by the upload tool
type ManifestWriter interface {
	Write(target UploadTarget, contentRoot string) (string, error)
}

// BuildSanitizer removes do-not-ship content from a build directory
type BuildSanitizer interface {
	Clean(root string) (int, error)
}

// BuildLocator resolves the build root from an exported build path
type BuildLocator interface {
	ResolveBuildDir(path string) (string, error)
}

// ResultNotifier reports the outcome of an upload
type ResultNotifier interface {
	NotifyResult(ctx context.Context, webhookURL string, result InvocationResult)
}
