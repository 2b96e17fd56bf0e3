package glslgen

import "fmt"

// Version is a GLSL target version, mirroring glsl.Version/Options'
// Major/Minor/ES shape, pinned by default to core profile 4.40 per
// spec §1/§6.2.
type Version struct {
	Major, Minor int
	ES           bool
}

// Version440 is this compiler's default and only exercised target.
var Version440 = Version{Major: 4, Minor: 40, ES: false}

// String renders the #version directive argument, e.g. "440" or "300 es".
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// Options configures GlslEmitter. Version is settable for forward
// compatibility with a future target even though this compiler currently
// only emits against Version440.
type Options struct {
	Version            Version
	ForceHighPrecision bool
}

// DefaultOptions returns {Version: Version440, ForceHighPrecision: false}.
func DefaultOptions() Options {
	return Options{Version: Version440}
}
