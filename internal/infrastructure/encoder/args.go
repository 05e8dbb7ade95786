package encoder

import (
	"fmt"
	"strconv"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

const (
	fallbackQuality = "1080p"
	fallbackBitrate = 4000
	audioBitrate    = "128k"
	audioSampleRate = "44100"
)

// buildPushArgs assembles the ffmpeg invocation that reads the uploaded
// file at its native frame rate and pushes it to the RTMP ingest
// endpoint as an FLV stream.
func buildPushArgs(opts ports.LaunchOptions) []string {
	profile, ok := domain.ProfileFor(opts.Quality)
	if !ok {
		profile, _ = domain.ProfileFor(fallbackQuality)
	}

	kbps, err := strconv.Atoi(opts.Bitrate)
	if err != nil || kbps <= 0 {
		kbps = fallbackBitrate
	}

	return []string{
		"-hide_banner",
		"-nostdin",
		"-re",
		"-i", opts.InputPath,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-b:v", fmt.Sprintf("%dk", kbps),
		"-maxrate", fmt.Sprintf("%dk", kbps),
		"-bufsize", fmt.Sprintf("%dk", 2*kbps),
		"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-ar", audioSampleRate,
		"-f", "flv",
		opts.IngestURL,
	}
}
