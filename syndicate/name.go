package syndicate

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxRemoteNameLen is the dataset name length bound CKAN enforces.
const maxRemoteNameLen = 100

// remoteNameHashLen is the number of hash characters appended when a name
// must be shortened.
const remoteNameHashLen = 8

// RemoteName computes the dataset name used on the remote catalog:
// "{prefix}-{name}", shortened deterministically when it would exceed the
// remote's length bound. The shortened form truncates the candidate and
// appends a suffix derived from a namespace UUID of the full name, so the
// same inputs always produce the same remote name and distinct long names
// stay distinct.
func RemoteName(prefix, name string) string {
	candidate := name
	if prefix != "" {
		candidate = prefix + "-" + name
	}
	if len(candidate) <= maxRemoteNameLen {
		return candidate
	}

	suffix := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(candidate)).String()[:remoteNameHashLen]
	cut := maxRemoteNameLen - remoteNameHashLen - 1
	for cut > 0 && !utf8.RuneStart(candidate[cut]) {
		cut--
	}
	return candidate[:cut] + "-" + suffix
}
