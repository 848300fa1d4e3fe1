package publish

import "time"

// InvocationResult records the outcome of a single SteamCMD run
type InvocationResult struct {
	ExitCode       int
	Duration       time.Duration
	Target         UploadTarget
	BuildTargetKey string
	Err            error // Set when the process could not be launched or waited on
}

// Succeeded reports whether the upload tool exited with code 0
func (r InvocationResult) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// DurationSeconds returns the wall-clock duration in seconds
func (r InvocationResult) DurationSeconds() float64 {
	return r.Duration.Seconds()
}
