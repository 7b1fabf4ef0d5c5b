package testsupport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"vizmse/internal/msehttp"
)

// Command is one recorded HTTP command.
type Command struct {
	Verb   string
	Target string
}

// CommandRecorder stands in for the HTTP command client.
type CommandRecorder struct {
	Journal *Journal
	// Err, when set, is returned by every command.
	Err error

	mu       sync.Mutex
	commands []Command
}

// NewCommandRecorder returns a recorder writing to journal.
func NewCommandRecorder(journal *Journal) *CommandRecorder {
	return &CommandRecorder{Journal: journal}
}

// Commands returns the recorded commands in order.
func (c *CommandRecorder) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Command(nil), c.commands...)
}

func (c *CommandRecorder) Command(_ context.Context, verb, target string) (*msehttp.CommandResult, error) {
	c.mu.Lock()
	c.commands = append(c.commands, Command{Verb: verb, Target: target})
	err := c.Err
	c.mu.Unlock()
	c.Journal.Add("command " + verb + " " + target)
	if err != nil {
		return nil, err
	}
	return &msehttp.CommandResult{Status: http.StatusOK, Path: "/profiles/TEST/" + verb, Body: target}, nil
}

func (c *CommandRecorder) InitializePlaylist(ctx context.Context, playlistID string) (*msehttp.CommandResult, error) {
	return c.Command(ctx, msehttp.VerbInitialize, msehttp.PlaylistPath(playlistID))
}

func (c *CommandRecorder) CleanupPlaylist(ctx context.Context, playlistID string) (*msehttp.CommandResult, error) {
	return c.Command(ctx, msehttp.VerbCleanup, msehttp.PlaylistPath(playlistID))
}

func (c *CommandRecorder) CleanupShow(ctx context.Context, showID string) (*msehttp.CommandResult, error) {
	return c.Command(ctx, msehttp.VerbCleanup, msehttp.ShowPath(showID))
}

// CommandRequest is one request observed by a CommandServer.
type CommandRequest struct {
	Method string
	Path   string
	Body   string
}

// CommandServer is an httptest stand-in for the engine's command interface.
type CommandServer struct {
	Host string
	Port int
	URL  string

	mu       sync.Mutex
	requests []CommandRequest
	status   int
}

// NewCommandServer starts a command server that answers 200 "OK" until
// told otherwise.
func NewCommandServer(t testing.TB) *CommandServer {
	t.Helper()

	cs := &CommandServer{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(cs.serve))
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, portText, err := net.SplitHostPort(parsed.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	cs.Host, cs.Port, cs.URL = host, port, server.URL
	return cs
}

// RespondWith changes the status code of later replies.
func (cs *CommandServer) RespondWith(status int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = status
}

// Requests returns the observed requests in order.
func (cs *CommandServer) Requests() []CommandRequest {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]CommandRequest(nil), cs.requests...)
}

func (cs *CommandServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	cs.mu.Lock()
	cs.requests = append(cs.requests, CommandRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	status := cs.status
	cs.mu.Unlock()
	w.WriteHeader(status)
	_, _ = io.WriteString(w, "OK")
}
