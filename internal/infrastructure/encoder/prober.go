package encoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/utils"
)

const defaultProbeTimeout = 10 * time.Second

type prober struct {
	ffprobePath string
	timeout     time.Duration
	logger      *zap.SugaredLogger
}

// NewProber creates a MediaProber backed by ffprobe.
func NewProber(ffprobePath string, timeout time.Duration, logger *zap.SugaredLogger) ports.MediaProber {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &prober{ffprobePath: ffprobePath, timeout: timeout, logger: logger}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

func (p *prober) Probe(ctx context.Context, path string) (*domain.MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		probesTotal.WithLabelValues("error").Inc()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			p.logger.Warnw("ffprobe failed",
				"path", path,
				"stderr", utils.TruncateString(string(exitErr.Stderr), 500))
		}
		return nil, fmt.Errorf("failed to probe media file: %w", err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		probesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	hasVideo := false
	for _, stream := range parsed.Streams {
		if stream.CodecType == "video" {
			hasVideo = true
			break
		}
	}
	if !hasVideo {
		probesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil || seconds <= 0 {
		probesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("probe output has no usable duration for %s", path)
	}

	info := &domain.MediaInfo{
		DurationSeconds: int64(math.Floor(seconds)),
	}
	if size, err := strconv.ParseInt(parsed.Format.Size, 10, 64); err == nil {
		info.SizeBytes = size
	} else if stat, err := os.Stat(path); err == nil {
		info.SizeBytes = stat.Size()
	}

	probesTotal.WithLabelValues("ok").Inc()
	p.logger.Debugw("probed media file",
		"path", path,
		"duration_seconds", info.DurationSeconds,
		"size_bytes", info.SizeBytes)
	return info, nil
}
