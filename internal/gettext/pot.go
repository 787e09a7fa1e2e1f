package gettext

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio/v2"

	"shipwright/internal/services"
)

const charsetPlaceholder = "CHARSET"

// minimum template length for the header rewrite to be meaningful: the
// copyright line, the deleted boilerplate line, and the charset line must
// all exist.
const minTemplateLines = 16

// PostProcess normalizes the template header the extraction tool emits:
// the second line becomes the given copyright notice, the third line of
// tool boilerplate is removed, the charset placeholder on the
// Content-Type line is replaced with UTF-8 exactly once, and the empty
// Language header is stamped with sourceLanguage when one is given. The
// rewritten template atomically replaces the original file.
func PostProcess(path, copyright, sourceLanguage string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "gettext", "post_process", path, err)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) < minTemplateLines {
		return services.Wrap(services.ErrExternalTool, "gettext", "post_process", path,
			fmt.Errorf("template has %d lines, expected at least %d", len(lines), minTemplateLines))
	}

	lines[1] = copyright
	lines = append(lines[:2], lines[3:]...)

	replaced := false
	for i, line := range lines {
		if !replaced && strings.Contains(line, "charset="+charsetPlaceholder) {
			lines[i] = strings.Replace(line, charsetPlaceholder, "UTF-8", 1)
			replaced = true
		}
	}
	if !replaced {
		return services.Wrap(services.ErrExternalTool, "gettext", "post_process", path,
			fmt.Errorf("charset placeholder not found"))
	}

	if sourceLanguage != "" {
		stamped := false
		for i, line := range lines {
			// The colon keeps the earlier "Language-Team:" line from
			// matching.
			if strings.HasPrefix(line, `"Language:`) {
				lines[i] = `"Language: ` + sourceLanguage + `\n"`
				stamped = true
				break
			}
		}
		if !stamped {
			return services.Wrap(services.ErrExternalTool, "gettext", "post_process", path,
				fmt.Errorf("language header not found"))
		}
	}

	if err := renameio.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "gettext", "post_process", path, err)
	}
	return nil
}
