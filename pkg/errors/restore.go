package errors

import (
	"fmt"
	"strings"
)

// RestoreKind classifies a failed restore.
type RestoreKind string

const (
	RestoreSDK       RestoreKind = "sdk"        // SDK missing or too old
	RestoreNoProject RestoreKind = "no_project" // no project file in the working directory
	RestoreSolution  RestoreKind = "solution"   // solution or several project files given
	RestoreGeneric   RestoreKind = "generic"    // anything else
)

const runOnProject = "Please run nugraph in a directory that contains a single project file or pass an explicit project file as the first argument."

// RestoreError is returned when the build tool exits with a non-zero code.
//
// Recognized kinds carry Problem and Recovery. The generic kind carries the
// full command line, the working directory and the combined output instead.
type RestoreError struct {
	Kind             RestoreKind
	ExitCode         int
	Problem          string
	Recovery         string
	Command          string
	WorkingDirectory string
	Output           string
}

// diagnostics are matched in order against the combined tool output.
var diagnostics = []struct {
	code     string
	kind     RestoreKind
	problem  string
	recovery string
}{
	{"MSB1001", RestoreSDK, "nugraph requires at least the .NET 8 SDK", "Download the latest .NET SDK on https://get.dot.net"},
	{"MSB1003", RestoreNoProject, "The current working directory does not contain a project file.", runOnProject},
	{"MSB1011", RestoreSolution, "The current working directory contains more than one project file.", runOnProject},
	{"MSB1063", RestoreSolution, "Solution files are not supported.", runOnProject},
}

// ClassifyRestore builds a RestoreError from a failed restore by scanning
// output for known MSBuild diagnostic codes (case-insensitively).
func ClassifyRestore(exitCode int, workingDirectory, command, output string) *RestoreError {
	upper := strings.ToUpper(output)
	for _, d := range diagnostics {
		if strings.Contains(upper, d.code) {
			return &RestoreError{Kind: d.kind, ExitCode: exitCode, Problem: d.problem, Recovery: d.recovery}
		}
	}
	return &RestoreError{
		Kind:             RestoreGeneric,
		ExitCode:         exitCode,
		Command:          command,
		WorkingDirectory: workingDirectory,
		Output:           output,
	}
}

// SDKMissing is the failure reported when the dotnet executable cannot be started.
func SDKMissing(cause error) *RestoreError {
	return &RestoreError{
		Kind:     RestoreSDK,
		ExitCode: -1,
		Problem:  fmt.Sprintf("The .NET SDK could not be found (%v)", cause),
		Recovery: "Download the latest .NET SDK on https://get.dot.net",
	}
}

func (e *RestoreError) Error() string {
	if e.Kind == RestoreGeneric {
		return fmt.Sprintf("Running dotnet restore failed with exit code %d", e.ExitCode)
	}
	return e.Problem + "\n" + e.Recovery
}

// ErrorCode returns ErrCodeRestoreFailed.
func (e *RestoreError) ErrorCode() Code { return ErrCodeRestoreFailed }
