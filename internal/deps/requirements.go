package deps

import "shipwright/internal/config"

// Requirements lists the external tools the configured pipeline needs.
// Signing tools are only required for the signing mode actually in use,
// and the documentation converter is optional because the docs target
// skips gracefully when no documents exist.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "Application build",
			Command:     cfg.Build.Command,
			Description: "Compiles the source tree into the distribution",
		},
		{
			Name:        "xgettext",
			Command:     "xgettext",
			Description: "Extracts translatable strings",
		},
		{
			Name:        "makensis",
			Command:     "makensis",
			Description: "Compiles the installer script",
		},
		{
			Name:        "pandoc",
			Command:     "pandoc",
			Description: "Converts documentation to HTML",
			Optional:    true,
		},
	}
	switch cfg.SigningMode() {
	case config.SigningCertificate:
		reqs = append(reqs, Requirement{
			Name:        "signtool",
			Command:     "signtool",
			Description: "Signs binaries with the local certificate",
		})
	case config.SigningAPIToken:
		reqs = append(reqs, Requirement{
			Name:        "signclient",
			Command:     "signclient",
			Description: "Signs binaries via the signing service",
		})
	}
	return reqs
}
