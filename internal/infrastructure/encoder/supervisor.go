package encoder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

const (
	defaultConfirmWindow  = 2 * time.Second
	defaultStopEscalation = 5 * time.Second
	stderrRingCapacity    = 64
	stderrTailLines       = 12
)

// Config holds the knobs for the ffmpeg subprocess lifecycle.
type Config struct {
	FFmpegPath     string
	ConfirmWindow  time.Duration
	StopEscalation time.Duration
}

// process tracks one running encoder. The done channel closes after the
// exit status has been recorded and the supervisor slot was cleared, so
// anyone waiting on it observes a fully settled process.
type process struct {
	cmd         *exec.Cmd
	stderr      *logRing
	onExit      func(ports.ExitStatus)
	done        chan struct{}
	exit        ports.ExitStatus
	confirmed   bool
	terminating bool
	ioWg        sync.WaitGroup
}

type supervisor struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu   sync.Mutex
	proc *process
}

// NewSupervisor creates a ProcessSupervisor that runs ffmpeg in its own
// process group and owns at most one encoder at a time.
func NewSupervisor(cfg Config, logger *zap.SugaredLogger) ports.ProcessSupervisor {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.ConfirmWindow <= 0 {
		cfg.ConfirmWindow = defaultConfirmWindow
	}
	if cfg.StopEscalation <= 0 {
		cfg.StopEscalation = defaultStopEscalation
	}
	return &supervisor{cfg: cfg, logger: logger}
}

// Launch starts the encoder and blocks for the confirmation window. A
// process that dies inside the window fails the launch, whatever its
// exit code, and never triggers OnExit.
func (s *supervisor) Launch(ctx context.Context, opts ports.LaunchOptions) error {
	if _, err := os.Stat(opts.InputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrInputNotFound, opts.InputPath)
		}
		return fmt.Errorf("failed to stat input file: %w", err)
	}

	cmd := exec.Command(s.cfg.FFmpegPath, buildPushArgs(opts)...)
	setProcessGroup(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	proc := &process{
		cmd:    cmd,
		stderr: newLogRing(stderrRingCapacity),
		onExit: opts.OnExit,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.proc != nil {
		s.mu.Unlock()
		_ = stderr.Close()
		return domain.ErrEncoderRunning
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		launchesTotal.WithLabelValues("start_error").Inc()
		return fmt.Errorf("failed to start encoder: %w", err)
	}
	s.proc = proc
	s.mu.Unlock()

	s.logger.Infow("encoder process started",
		"pid", cmd.Process.Pid,
		"input", opts.InputPath,
		"quality", opts.Quality,
		"bitrate_kbps", opts.Bitrate)

	proc.ioWg.Add(1)
	go s.drainStderr(proc, stderr)
	go s.reap(proc)

	confirm := time.NewTimer(s.cfg.ConfirmWindow)
	defer confirm.Stop()

	select {
	case <-proc.done:
		launchesTotal.WithLabelValues("died_in_window").Inc()
		return s.confirmFailure(proc)
	case <-ctx.Done():
		s.logger.Warnw("encoder launch aborted", "pid", cmd.Process.Pid, "reason", ctx.Err())
		_ = killGroup(cmd)
		<-proc.done
		launchesTotal.WithLabelValues("aborted").Inc()
		return fmt.Errorf("encoder launch aborted: %w", ctx.Err())
	case <-confirm.C:
	}

	s.mu.Lock()
	if s.proc != proc {
		// Exited right as the window elapsed.
		s.mu.Unlock()
		<-proc.done
		launchesTotal.WithLabelValues("died_in_window").Inc()
		return s.confirmFailure(proc)
	}
	proc.confirmed = true
	s.mu.Unlock()

	launchesTotal.WithLabelValues("confirmed").Inc()
	s.logger.Infow("encoder launch confirmed", "pid", cmd.Process.Pid)
	return nil
}

// Terminate asks the running encoder to stop and waits for the exit to
// be observed. Reports false when no process was running.
func (s *supervisor) Terminate(ctx context.Context) (bool, error) {
	s.mu.Lock()
	proc := s.proc
	if proc == nil {
		s.mu.Unlock()
		return false, nil
	}
	proc.terminating = true
	s.mu.Unlock()

	pid := proc.cmd.Process.Pid
	s.logger.Infow("stopping encoder", "pid", pid)
	if err := terminateGroup(proc.cmd); err != nil {
		s.logger.Warnw("failed to signal encoder", "pid", pid, "error", err)
	}

	escalate := time.NewTimer(s.cfg.StopEscalation)
	defer escalate.Stop()

	select {
	case <-proc.done:
		return true, nil
	case <-ctx.Done():
	case <-escalate.C:
	}

	stopEscalationsTotal.Inc()
	s.logger.Warnw("encoder ignored graceful stop, killing process group", "pid", pid)
	if err := killGroup(proc.cmd); err != nil {
		s.logger.Warnw("failed to kill encoder", "pid", pid, "error", err)
	}

	select {
	case <-proc.done:
		return true, nil
	case <-time.After(s.cfg.StopEscalation):
		return false, fmt.Errorf("encoder process %d did not exit after kill", pid)
	}
}

func (s *supervisor) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

func (s *supervisor) drainStderr(proc *process, r io.Reader) {
	defer proc.ioWg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		proc.stderr.add(scanner.Text())
	}
}

// reap waits for the process, records the exit, frees the supervisor
// slot and closes done before invoking OnExit. That order lets OnExit
// handlers call Launch or Terminate without deadlocking.
func (s *supervisor) reap(proc *process) {
	proc.ioWg.Wait()
	err := proc.cmd.Wait()

	exit := ports.ExitStatus{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exit.Code = exitErr.ExitCode()
		} else {
			exit.Code = -1
			exit.Err = err
		}
	}

	s.mu.Lock()
	proc.exit = exit
	confirmed, terminating := proc.confirmed, proc.terminating
	if s.proc == proc {
		s.proc = nil
	}
	s.mu.Unlock()

	close(proc.done)

	switch {
	case terminating:
		exitsTotal.WithLabelValues("terminated").Inc()
		s.logger.Infow("encoder stopped", "pid", proc.cmd.Process.Pid, "exit_code", exit.Code)
	case exit.Code == 0 && exit.Err == nil:
		exitsTotal.WithLabelValues("clean").Inc()
		s.logger.Infow("encoder finished", "pid", proc.cmd.Process.Pid)
	default:
		exitsTotal.WithLabelValues("error").Inc()
		s.logger.Warnw("encoder exited with error",
			"pid", proc.cmd.Process.Pid,
			"exit_code", exit.Code,
			"stderr_tail", strings.Join(proc.stderr.tail(stderrTailLines), "\n"))
	}

	if confirmed && !terminating && proc.onExit != nil {
		proc.onExit(exit)
	}
}

func (s *supervisor) confirmFailure(proc *process) error {
	tail := strings.Join(proc.stderr.tail(stderrTailLines), "\n")
	s.logger.Errorw("encoder exited during confirmation window",
		"exit_code", proc.exit.Code,
		"stderr_tail", tail)
	if proc.exit.Err != nil {
		return fmt.Errorf("encoder exited during startup: %w", proc.exit.Err)
	}
	return fmt.Errorf("encoder exited during startup with code %d", proc.exit.Code)
}
