package errors

// Process exit codes, as in sysexits.h.
const (
	ExitOK        = 0
	ExitUsage     = 64  // EX_USAGE
	ExitDataErr   = 65  // EX_DATAERR
	ExitNoInput   = 66  // EX_NOINPUT
	ExitSoftware  = 70  // EX_SOFTWARE
	ExitCancelled = 130 // 128 + SIGINT
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsCancelled(err) {
		return ExitCancelled
	}
	switch GetCode(err) {
	case ErrCodePackageNotFound, ErrCodeNotFound:
		return ExitNoInput
	case ErrCodeRestoreFailed, ErrCodeInvalidManifest, ErrCodeInvalidPackage:
		return ExitDataErr
	case ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return ExitUsage
	default:
		return ExitSoftware
	}
}
