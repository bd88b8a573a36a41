package analysis

import (
	"slices"
	"strings"

	"github.com/bartekus/licaudit/internal/document"
)

var noticeNames = []string{
	"NOTICE", "LICENSE",
	"LICENSE.TXT", "NOTICE.TXT",
	"INSTALL", "INSTALL.TXT",
	"README", "README.TXT",
	"NEWS", "NEWS.TXT",
	"AUTHOR", "AUTHOR.TXT",
	"AUTHORS", "AUTHORS.TXT",
	"CHANGELOG", "CHANGELOG.TXT",
	"DISCLAIMER", "DISCLAIMER.TXT",
	"KEYS", "KEYS.TXT",
	"RELEASE-NOTES", "RELEASE-NOTES.TXT",
	"RELEASE_NOTES", "RELEASE_NOTES.TXT",
	"UPGRADE", "UPGRADE.TXT",
	"STATUS", "STATUS.TXT",
	"THIRD_PARTY_NOTICES", "THIRD_PARTY_NOTICES.TXT",
	"COPYRIGHT", "COPYRIGHT.TXT",
	"BUILDING", "BUILDING.TXT",
	"BUILD", "BUILD.TXT",
	"DEPENDENCIES",
}

var noticeSuffixes = []string{".LICENSE", ".LICENSE.TXT", ".NOTICE", ".NOTICE.TXT"}

// IsNotice reports whether name looks like a notice, license or readme file.
func IsNotice(name document.Name) bool {
	short := strings.ToUpper(name.ShortName())
	if slices.Contains(noticeNames, short) {
		return true
	}
	for _, s := range noticeSuffixes {
		if strings.HasSuffix(short, s) {
			return true
		}
	}
	return false
}
