package domain

import "time"

var sampleTracks = []Track{
	{
		Title:       "Celestial Drift",
		Artist:      "Luna Wave",
		Genre:       "Ambient",
		Source:      "Free Music Archive",
		URL:         "https://freemusicarchive.org/example1",
		Description: "Ethereal ambient soundscape perfect for late-night study sessions.",
	},
	{
		Title:       "Neon Boulevard",
		Artist:      "Retro Synth Collective",
		Genre:       "Synthwave",
		Source:      "Jamendo",
		URL:         "https://jamendo.com/example2",
		Description: "Pulsating synthwave with 80s vibes and driving basslines.",
	},
	{
		Title:       "Morning Bloom",
		Artist:      "Acoustic Garden",
		Genre:       "Folk",
		Source:      "Creative Commons",
		URL:         "https://creativecommons.org/example3",
		Description: "Warm acoustic folk guitar with gentle fingerpicking patterns.",
	},
	{
		Title:       "Deep Current",
		Artist:      "Bass Theory",
		Genre:       "Lo-fi Hip Hop",
		Source:      "Free Music Archive",
		URL:         "https://freemusicarchive.org/example4",
		Description: "Chill lo-fi beats with jazzy samples, ideal for relaxing.",
	},
	{
		Title:       "Electric Pulse",
		Artist:      "Circuit Breaker",
		Genre:       "Electronic",
		Source:      "Jamendo",
		URL:         "https://jamendo.com/example5",
		Description: "High-energy electronic track with complex layered synths.",
	},
}

// SampleTracks returns a fresh copy of the demonstration tracks.
func SampleTracks() []Track {
	return tracksCopy(sampleTracks)
}

// SampleTurns returns the demonstration conversation, timestamped relative to now.
func SampleTurns(now time.Time) []ChatTurn {
	return []ChatTurn{
		{
			ID:        "sample-1",
			Role:      RoleUser,
			Content:   "I'm looking for some chill ambient music for studying late at night. Something atmospheric and relaxing.",
			Timestamp: now.Add(-300 * time.Second),
		},
		{
			ID:        "sample-2",
			Role:      RoleAssistant,
			Content:   "Great taste! I found some amazing free ambient and chill tracks that are perfect for late-night study sessions. These range from ethereal soundscapes to lo-fi beats -- all legally free to listen to.",
			Tracks:    tracksCopy(sampleTracks[:3]),
			Timestamp: now.Add(-290 * time.Second),
		},
		{
			ID:        "sample-3",
			Role:      RoleUser,
			Content:   "These are awesome! Can you find some more upbeat electronic tracks too?",
			Timestamp: now.Add(-200 * time.Second),
		},
		{
			ID:        "sample-4",
			Role:      RoleAssistant,
			Content:   "Absolutely! Here are some energetic electronic and synthwave tracks to get you moving. These are all available for free streaming.",
			Tracks:    tracksCopy(sampleTracks[3:]),
			Timestamp: now.Add(-190 * time.Second),
		},
	}
}

// SamplePlaylists returns the demonstration playlists, timestamped relative to now.
func SamplePlaylists(now time.Time) []Playlist {
	return []Playlist{
		{
			ID:        "sample-pl-1",
			Name:      "Late Night Study",
			Tracks:    tracksCopy(sampleTracks[:2]),
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:        "sample-pl-2",
			Name:      "Energy Boost",
			Tracks:    tracksCopy(sampleTracks[3:]),
			CreatedAt: now.Add(-12 * time.Hour),
		},
	}
}

func tracksCopy(in []Track) []Track {
	out := make([]Track, len(in))
	copy(out, in)
	return out
}
