package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ServerManager manages inference server processes.
type ServerManager struct {
	servers map[string]*ServerProcess
	mu      sync.Mutex
}

// ServerProcess represents a running server process.
type ServerProcess struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	exited chan struct{}
	err    error
}

// ServerConfig defines how to start and check a backend server.
type ServerConfig struct {
	Env          map[string]string
	Name         string
	BinPath      string
	HealthPath   string
	Args         []string
	Port         int
	ReadyTimeout time.Duration
}

// NewServerManager initializes a ServerManager.
func NewServerManager() *ServerManager {
	return &ServerManager{
		servers: map[string]*ServerProcess{},
	}
}

// StartServer starts a server and blocks until its health endpoint answers.
// Starting an already running name/port pair is a no-op.
func (sm *ServerManager) StartServer(ctx context.Context, cfg ServerConfig) error {
	key := serverKey(cfg.Name, cfg.Port)

	sm.mu.Lock()
	if _, exists := sm.servers[key]; exists {
		sm.mu.Unlock()
		return nil
	}
	sm.mu.Unlock()

	if info, err := os.Stat(cfg.BinPath); err != nil {
		return fmt.Errorf("failed to start %s server: %w", cfg.Name, err)
	} else if info.IsDir() {
		return fmt.Errorf("failed to start %s server: %s is a directory", cfg.Name, cfg.BinPath)
	}

	// The process outlives the request that started it.
	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, cfg.BinPath, cfg.Args...)

	if len(cfg.Env) > 0 {
		env := os.Environ()
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s server: %w", cfg.Name, err)
	}

	proc := &ServerProcess{
		cmd:    cmd,
		cancel: cancel,
		exited: make(chan struct{}),
	}
	go func() {
		proc.err = cmd.Wait()
		close(proc.exited)
	}()

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	timeout := cfg.ReadyTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	url := fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Port, healthPath)
	if err := sm.waitForServer(ctx, proc, url, timeout); err != nil {
		proc.stop()
		return fmt.Errorf("%s server did not become ready: %w", cfg.Name, err)
	}

	sm.mu.Lock()
	sm.servers[key] = proc
	sm.mu.Unlock()

	slog.Info("Server started", "name", cfg.Name, "port", cfg.Port, "pid", cmd.Process.Pid)
	return nil
}

// StopServer terminates a server.
func (sm *ServerManager) StopServer(name string, port int) error {
	key := serverKey(name, port)

	sm.mu.Lock()
	proc, exists := sm.servers[key]
	delete(sm.servers, key)
	sm.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrServerNotFound, key)
	}

	proc.stop()
	slog.Info("Server stopped", "name", name, "port", port)
	return nil
}

// Running reports whether a server is registered for the name/port pair.
func (sm *ServerManager) Running(name string, port int) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	_, ok := sm.servers[serverKey(name, port)]
	return ok
}

// StopAll terminates all running servers.
func (sm *ServerManager) StopAll() {
	sm.mu.Lock()
	servers := sm.servers
	sm.servers = map[string]*ServerProcess{}
	sm.mu.Unlock()

	for _, proc := range servers {
		proc.stop()
	}

	slog.Info("All servers stopped", "count", len(servers))
}

// waitForServer polls url until it answers 200, the process exits, or the
// timeout elapses.
func (sm *ServerManager) waitForServer(ctx context.Context, proc *ServerProcess, url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-proc.exited:
			return fmt.Errorf("process exited: %v", proc.err)
		case <-ticker.C:
		}
	}

	return fmt.Errorf("server failed to respond at %s within %v", url, timeout)
}

func (p *ServerProcess) stop() {
	p.cancel()
	<-p.exited
}

func serverKey(name string, port int) string {
	return fmt.Sprintf("%s-%d", name, port)
}

// FreePort asks the kernel for an unused loopback TCP port.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to allocate port: %w", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
