package spawner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// stopGrace is how long a process gets between interrupt and kill.
const stopGrace = time.Second

// Process is one supervised bot process.
type Process struct {
	bot    Bot
	logger zerolog.Logger

	cmd     *exec.Cmd
	started time.Time
	done    chan struct{}

	mu      sync.Mutex
	exitErr error
}

func newProcess(ctx context.Context, bot Bot, env map[string]string, logger zerolog.Logger) *Process {
	cmd := exec.CommandContext(ctx, bot.Command, bot.Args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return &Process{
		bot:    bot,
		logger: logger.With().Str("bot", bot.Name).Logger(),
		cmd:    cmd,
		done:   make(chan struct{}),
	}
}

// start launches the process and begins relaying its output.
func (p *Process) start() error {
	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := p.cmd.Start(); err != nil {
		return err
	}
	p.started = time.Now()
	p.logger.Info().Str("command", p.bot.Command).Strs("args", p.bot.Args).Msg("Bot process started")

	go p.relay("stdout", stdout)
	go p.relay("stderr", stderr)
	go p.monitor()
	return nil
}

// Stop interrupts the process, escalating to a kill after a grace period.
func (p *Process) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		// Already gone, or signalling is unsupported. Kill settles both.
		p.cmd.Process.Kill()
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(stopGrace):
	}

	p.logger.Debug().Msg("Bot ignored the interrupt, killing it")
	if err := p.cmd.Process.Kill(); err != nil {
		select {
		case <-p.done:
			return nil
		default:
			return fmt.Errorf("kill %s: %w", p.bot.Name, err)
		}
	}
	<-p.done
	return nil
}

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Alive reports whether the process is still running.
func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Process) monitor() {
	defer close(p.done)

	err := p.cmd.Wait()
	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == -1 {
			// Signal terminations are the normal shutdown path.
			p.logger.Info().Dur("uptime", time.Since(p.started)).Msg("Bot process terminated")
			return
		}
		p.logger.Warn().Err(err).Dur("uptime", time.Since(p.started)).Msg("Bot process exited with error")
		return
	}
	p.logger.Info().Dur("uptime", time.Since(p.started)).Msg("Bot process exited")
}

// relay forwards one output stream into the match log. The pipes close when
// the process exits, which ends the scan.
func (p *Process) relay(stream string, pipe io.Reader) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		p.logger.Debug().Str("stream", stream).Msg(scanner.Text())
	}
}
