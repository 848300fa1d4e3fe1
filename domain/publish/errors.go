package publish

import "errors"

var (
	// ErrConfigMissing is returned when a required environment value is absent
	ErrConfigMissing = errors.New("missing required configuration")

	// ErrUnknownTarget is returned when a build target key is not registered
	ErrUnknownTarget = errors.New("unknown build target")

	// ErrToolNotFound is returned when the SteamCMD executable does not exist
	ErrToolNotFound = errors.New("steamcmd not found")

	// ErrBuildPathNotFound is returned when the exported build cannot be located
	ErrBuildPathNotFound = errors.New("build directory not found")

	// ErrManifestWriteFailed is returned when the app build manifest cannot be written
	ErrManifestWriteFailed = errors.New("failed to write app build manifest")

	// ErrConfigDecode is returned when the encoded Steam config is not valid base64
	ErrConfigDecode = errors.New("failed to decode steam config")

	// ErrConfigStageFailed is returned when the decoded config cannot be written for the tool
	ErrConfigStageFailed = errors.New("failed to stage steam config")

	// ErrSanitizeFailed is returned when one or more do-not-ship directories could not be removed
	ErrSanitizeFailed = errors.New("failed to remove do-not-ship directory")

	// ErrUploadProcessFailure is returned when SteamCMD could not be launched or waited on
	ErrUploadProcessFailure = errors.New("steamcmd process failed")
)
