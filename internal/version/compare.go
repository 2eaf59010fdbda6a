package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// CheckConfigCompatibility checks that a config file written for
// configVersion can be read by a binary at binaryVersion.
//
// Rules:
//   - "main" on either side is a development build and skips the check
//   - an empty config version is treated as the binary version
//   - major versions must match; minor and patch may differ
//
// Examples:
//   - binary 1.2.0, config 1.0.3 -> OK
//   - binary 1.0.0, config 1.4.0 -> OK
//   - binary 2.0.0, config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if binaryVersion == "main" || configVersion == "main" || configVersion == "" {
		return nil
	}

	binarySemver, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid binary version '%s'", binaryVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if binarySemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"major version mismatch: binary is %d.x.x but config was written for %d.x.x",
			binarySemver.Major(), configSemver.Major())
	}

	return nil
}
