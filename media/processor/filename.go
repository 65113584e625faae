package processor

import (
	"path/filepath"
	"strings"

	"github.com/leeforge/imagekit/utils"
)

const fallbackStem = "image"

// DownloadName derives the output file name for a converted source: the
// source extension is replaced by the format's, or appended when missing.
func DownloadName(sourceName string, f Format) string {
	stem := strings.TrimSpace(utils.StemOf(filepath.Base(sourceName)))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = fallbackStem
	}
	return stem + f.Extension()
}
