package domain

var defaultProfiles = map[string]EncodingProfile{
	"480p":  {Quality: "480p", Width: 854, Height: 480},
	"720p":  {Quality: "720p", Width: 1280, Height: 720},
	"1080p": {Quality: "1080p", Width: 1920, Height: 1080},
}

// ProfileFor resolves a named quality to encoder dimensions.
func ProfileFor(quality string) (EncodingProfile, bool) {
	profile, ok := defaultProfiles[quality]
	return profile, ok
}

// Profiles lists the supported encoding profiles, smallest first.
func Profiles() []EncodingProfile {
	return []EncodingProfile{
		defaultProfiles["480p"],
		defaultProfiles["720p"],
		defaultProfiles["1080p"],
	}
}
