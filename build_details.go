package specgate

import "fmt"

var (
	// version is overridden with -ldflags "-X ...specgate.version=" by
	// release builds. Source builds report "dev".
	version = "dev"
)

// Version returns the compiled version or 'dev' if run from source
func Version() string {
	return version
}

// UserAgent returns the User-Agent string to use for outbound requests
func UserAgent() string {
	return fmt.Sprintf("specgate/%s", version)
}
