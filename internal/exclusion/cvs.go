package exclusion

import "strings"

const cvsIgnoreFile = ".cvsignore"

// NewCVSProcessor reads .cvsignore files. There is no comment syntax; every
// whitespace separated token is an exclude for that directory only.
func NewCVSProcessor() FileProcessor {
	return &descendingProcessor{
		fileName:    cvsIgnoreFile,
		filter:      NotBlank,
		selfExclude: true,
		literal:     true,
		newEntry:    func() entryFunc { return cvsEntry },
	}
}

// cvsEntry splits a line into tokens. A leading `!` carries no negation.
func cvsEntry(_ *entryContext, entry string) []string {
	return strings.Fields(entry)
}
