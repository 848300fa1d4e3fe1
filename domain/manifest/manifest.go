// Package manifest renders and reads SteamPipe app build scripts (VDF).
package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"steam-publisher/domain/publish"
)

// FileName returns the manifest file name for an app
func FileName(appID int) string {
	return fmt.Sprintf("app_build_%d.vdf", appID)
}

// Description returns the build description shown in the Steamworks build list
func Description(now time.Time) string {
	return fmt.Sprintf("Automated build %s UTC", now.UTC().Format("2006-01-02 15:04"))
}

// Escape escapes backslashes and double quotes so s can be embedded in a quoted VDF value
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Render builds the app build script for target. contentRoot and scratchDir
// should be absolute; they are embedded escaped.
func Render(target publish.UploadTarget, contentRoot, scratchDir string, now time.Time) string {
	var b strings.Builder

	line := func(indent int, format string, args ...any) {
		b.WriteString(strings.Repeat("    ", indent))
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\n")
	}

	line(0, `"appbuild"`)
	line(0, `{`)
	line(1, `"appid"        "%d"`, target.AppID)
	line(1, `"desc"         "%s"`, Escape(Description(now)))
	line(1, `"buildoutput"  "%s"`, Escape(scratchDir))
	if branch := target.LiveBranch(); branch != "" {
		line(1, `"setlive"      "%s"`, Escape(branch))
	}
	line(1, `"depots"`)
	line(1, `{`)
	line(2, `"%s"`, strconv.Itoa(target.DepotID))
	line(2, `{`)
	line(3, `"contentroot" "%s"`, Escape(contentRoot))
	line(3, `"filemapping"`)
	line(3, `{`)
	line(4, `"localpath"   "*"`)
	line(4, `"depotpath"   "."`)
	line(4, `"recursive"   "1"`)
	line(3, `}`)
	line(2, `}`)
	line(1, `}`)
	line(0, `}`)

	return b.String()
}
