package nuget

import ng "github.com/matzehuels/nugraph/pkg/nuget"

// selectEntry picks the entry matching want. An explicit version must match
// exactly and may be unlisted. Without a version, the highest listed stable
// release wins over the highest listed prerelease.
func selectEntry(entries []entry, want ng.Version) (entry, bool) {
	if !want.IsZero() {
		for _, e := range entries {
			if e.Version.Compare(want) == 0 {
				return e, true
			}
		}
		return entry{}, false
	}

	var release, prerelease *entry
	for i := range entries {
		e := &entries[i]
		if !e.Listed {
			continue
		}
		switch {
		case e.Version.IsPrerelease():
			if prerelease == nil || e.Version.Compare(prerelease.Version) > 0 {
				prerelease = e
			}
		default:
			if release == nil || e.Version.Compare(release.Version) > 0 {
				release = e
			}
		}
	}
	if release != nil {
		return *release, true
	}
	if prerelease != nil {
		return *prerelease, true
	}
	return entry{}, false
}
