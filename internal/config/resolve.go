package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/AndreyAkinshin/dejadiff/internal/driver"
)

// noneSentinel is the literal that disables a site file or prefix.
const noneSentinel = "None"

// TestSpecs resolves the configured tests into driver specs, in
// configuration order. Relative directories and site files are resolved
// against cwd.
func (c *Config) TestSpecs(cwd string) []driver.TestSpec {
	specs := make([]driver.TestSpec, 0, len(c.DejaGnu.Tests))
	for _, test := range c.DejaGnu.Tests {
		prefix := test.Prefix
		if prefix == noneSentinel {
			prefix = ""
		}
		site := test.Site
		if site == "" {
			site = c.DejaGnu.Site
		}
		specs = append(specs, driver.TestSpec{
			Prefix:    prefix,
			Directory: resolvePath(cwd, test.Dir),
			Command:   slices.Clone([]string(test.Command)),
			Site:      resolveSite(cwd, site),
			Timeout:   time.Duration(c.DejaGnu.Timeout),
			StripANSI: test.StripANSI,
		})
	}
	return specs
}

// resolvePath makes p absolute against cwd. An empty path is cwd itself.
func resolvePath(cwd, p string) string {
	if p == "" {
		return cwd
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

// resolveSite returns the absolute site path, or "" when the site is unset.
func resolveSite(cwd, site string) string {
	if site == "" || site == noneSentinel {
		return ""
	}
	return resolvePath(cwd, site)
}

// ResolvePath makes a configured path absolute against cwd.
func ResolvePath(cwd, p string) string {
	return resolvePath(cwd, p)
}
