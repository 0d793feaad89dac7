// internal/simulator/simulator.go
package simulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"mcintosh-service/internal/driver/mcintosh"
)

// State is the emulated processor's settings
type State struct {
	Power       bool
	Volume      int
	MaxVolume   int
	Muted       bool
	Source      int
	Zone2Power  bool
	Zone2Volume int
	Zone2Muted  bool
	Zone2Source int
	Bass        int
	Treble      int
	Loudness    bool
	Lipsync     int
	LipsyncMin  int
	LipsyncMax  int
	Center      int
	LFE         int
	Surrounds   int
	Height      int
	Verbosity   int
}

// DefaultState is a processor that is on, at volume 30, playing HDMI 1
func DefaultState() State {
	return State{
		Power:       true,
		Volume:      30,
		MaxVolume:   99,
		Zone2Volume: 20,
		LipsyncMin:  0,
		LipsyncMax:  200,
	}
}

// Option configures a Server
type Option func(*Server)

// WithState sets the initial state
func WithState(st State) Option {
	return func(s *Server) { s.state = st }
}

// WithModelName sets the name reported to !DEVICE?
func WithModelName(name string) Option {
	return func(s *Server) { s.modelName = name }
}

// WithReplyDelay delays every reply
func WithReplyDelay(d time.Duration) Option {
	return func(s *Server) { s.replyDelay.Store(int64(d)) }
}

// WithQuotedSourceNames appends the quoted input name to source replies
func WithQuotedSourceNames(enabled bool) Option {
	return func(s *Server) { s.quotedNames = enabled }
}

// WithLongTrebleReply answers treble queries with the TRIMTREBLE spelling
func WithLongTrebleReply(enabled bool) Option {
	return func(s *Server) { s.longTreble = enabled }
}

// Server emulates a processor's IP control port
type Server struct {
	logger      *zap.Logger
	modelName   string
	quotedNames bool
	longTreble  bool
	replyDelay  atomic.Int64
	silent      atomic.Bool

	mu       sync.Mutex
	state    State
	commands []string

	listener net.Listener
	conns    *xsync.MapOf[net.Conn, struct{}]
	wg       sync.WaitGroup
	closed   atomic.Bool
}

// New creates a server with DefaultState
func New(logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:    logger.With(zap.String("component", "simulator")),
		modelName: "MX160",
		state:     DefaultState(),
		conns:     xsync.NewMapOf[net.Conn, struct{}](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on addr ("127.0.0.1:0" picks a free port) and serves clients
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("simulator listen %s: %w", addr, err)
	}
	s.listener = ln
	s.logger.Info("Simulator listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Serve runs until ctx is done
func (s *Server) Serve(ctx context.Context, addr string) error {
	if err := s.Start(addr); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}

// Addr returns the listening address
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the connection url clients should use
func (s *Server) URL() string {
	return "socket://" + s.Addr()
}

// Close stops listening and drops every client
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.DropClients()
	s.wg.Wait()
	return err
}

// DropClients disconnects every connected client
func (s *Server) DropClients() {
	s.conns.Range(func(c net.Conn, _ struct{}) bool {
		_ = c.Close()
		return true
	})
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	return s.conns.Size()
}

// SetSilent stops or resumes replies
func (s *Server) SetSilent(silent bool) {
	s.silent.Store(silent)
}

// SetReplyDelay changes the delay applied to every reply
func (s *Server) SetReplyDelay(d time.Duration) {
	s.replyDelay.Store(int64(d))
}

// State returns a copy of the current state
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update mutates the state under the server lock
func (s *Server) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Commands returns every command received, without terminators
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.closed.Load() && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("Accept failed", zap.Error(err))
			}
			return
		}
		s.conns.Store(conn, struct{}{})
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.conns.Delete(conn)
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\r')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		if cmd == "" {
			continue
		}

		reply := s.Handle(cmd)
		if s.silent.Load() || reply == "" {
			continue
		}
		if d := time.Duration(s.replyDelay.Load()); d > 0 {
			time.Sleep(d)
		}
		if _, err := conn.Write([]byte(reply + "\r")); err != nil {
			return
		}
	}
}

// command is a parsed "!KEYWORD[(param)][+|-][?]"
type command struct {
	keyword string
	param   string
	hasArg  bool
	adjust  int // +1, -1 or 0
	query   bool
}

func parseCommand(raw string) (command, bool) {
	if !strings.HasPrefix(raw, "!") {
		return command{}, false
	}
	body := raw[1:]
	var c command
	if strings.HasSuffix(body, "?") {
		c.query = true
		body = strings.TrimSuffix(body, "?")
	}
	if open := strings.IndexByte(body, '('); open >= 0 {
		end := strings.LastIndexByte(body, ')')
		if end < open {
			return command{}, false
		}
		c.param = body[open+1 : end]
		c.hasArg = true
		body = body[:open] + body[end+1:]
	}
	switch {
	case strings.HasSuffix(body, "+"):
		c.adjust = 1
		body = strings.TrimSuffix(body, "+")
	case strings.HasSuffix(body, "-"):
		c.adjust = -1
		body = strings.TrimSuffix(body, "-")
	}
	c.keyword = body
	return c, c.keyword != ""
}

// Handle applies one command to the state and returns the reply line
func (s *Server) Handle(raw string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands = append(s.commands, raw)
	st := &s.state

	switch raw {
	case "!PON":
		st.Power = true
		return boolReply("POWER", st.Power)
	case "!POFF":
		st.Power = false
		return boolReply("POWER", st.Power)
	case "!PTOGGLE":
		st.Power = !st.Power
		return boolReply("POWER", st.Power)
	case "!MUTEON", "!MUTEOFF", "!MUTE":
		st.Muted = switchValue(raw, "!MUTEON", "!MUTEOFF", st.Muted)
		return boolReply("MUTE", st.Muted)
	case "!POWERONZONE2", "!POWEROFFZONE2", "!ZPTOGGLE":
		st.Zone2Power = switchValue(raw, "!POWERONZONE2", "!POWEROFFZONE2", st.Zone2Power)
		return boolReply("POWERZONE2", st.Zone2Power)
	case "!ZMUTEON", "!ZMUTEOFF", "!ZMUTE":
		st.Zone2Muted = switchValue(raw, "!ZMUTEON", "!ZMUTEOFF", st.Zone2Muted)
		return boolReply("ZMUTE", st.Zone2Muted)
	case "!PING?":
		return "!PONG"
	case "!DEVICE?":
		return "!DEVICE(" + s.modelName + ")"
	case "!LIPSYNCRANGE?":
		return fmt.Sprintf("!LIPSYNCRANGE(%d,%d)", st.LipsyncMin, st.LipsyncMax)
	case "!MAXVOL?":
		return intReply("MAXVOL", st.MaxVolume)
	}

	c, ok := parseCommand(raw)
	if !ok {
		return "!ERROR"
	}

	switch c.keyword {
	case "POWER":
		return boolReply("POWER", st.Power)
	case "MUTE":
		return boolReply("MUTE", st.Muted)
	case "POWERZONE2":
		return boolReply("POWERZONE2", st.Zone2Power)
	case "ZMUTE":
		return boolReply("ZMUTE", st.Zone2Muted)
	case "LOUDNESS":
		if c.hasArg && !c.query {
			st.Loudness = c.param == "1"
		}
		return boolReply("LOUDNESS", st.Loudness)
	case "VERB":
		if n, err := strconv.Atoi(c.param); err == nil {
			st.Verbosity = n
		}
		return intReply("VERB", st.Verbosity)
	case "VOL":
		return s.level(c, "VOL", &st.Volume, 0, st.MaxVolume, 1)
	case "ZVOL":
		return s.level(c, "ZVOL", &st.Zone2Volume, 0, st.MaxVolume, 1)
	case "TRIMBASS":
		return s.level(c, "TRIMBASS", &st.Bass, mcintosh.TrimMin, mcintosh.TrimMax, 5)
	case "TRIMTREB":
		name := "TRIMTREB"
		if s.longTreble {
			name = "TRIMTREBLE"
		}
		return s.level(c, name, &st.Treble, mcintosh.TrimMin, mcintosh.TrimMax, 5)
	case "TRIMCENTER":
		return s.level(c, "TRIMCENTER", &st.Center, mcintosh.TrimMin, mcintosh.TrimMax, 5)
	case "TRIMLFE":
		return s.level(c, "TRIMLFE", &st.LFE, mcintosh.TrimMin, mcintosh.TrimMax, 5)
	case "TRIMSURRS":
		return s.level(c, "TRIMSURRS", &st.Surrounds, mcintosh.TrimMin, mcintosh.TrimMax, 5)
	case "TRIMHEIGHT":
		return s.level(c, "TRIMHEIGHT", &st.Height, mcintosh.TrimMin, mcintosh.TrimMax, 5)
	case "LIPSYNC":
		return s.level(c, "LIPSYNC", &st.Lipsync, st.LipsyncMin, st.LipsyncMax, 5)
	case "SRC":
		return s.source(c, "SRC", &st.Source)
	case "ZSRC":
		return s.source(c, "ZSRC", &st.Zone2Source)
	}
	return "!ERROR"
}

func (s *Server) level(c command, name string, v *int, lo, hi, step int) string {
	switch {
	case c.adjust != 0:
		amount := step
		if c.hasArg {
			if n, err := strconv.Atoi(c.param); err == nil {
				amount = n
			}
		}
		*v = clamp(*v+c.adjust*amount, lo, hi)
	case c.hasArg && !c.query:
		if n, err := strconv.Atoi(c.param); err == nil {
			*v = clamp(n, lo, hi)
		}
	}
	return intReply(name, *v)
}

func (s *Server) source(c command, name string, v *int) string {
	switch {
	case c.adjust != 0:
		*v = (*v + c.adjust + mcintosh.SourceCount) % mcintosh.SourceCount
	case c.hasArg && c.query:
		// input info query leaves the selection unchanged
		n, err := strconv.Atoi(c.param)
		if err != nil {
			return "!ERROR"
		}
		return s.sourceReply(name, n, true)
	case c.hasArg:
		if n, err := strconv.Atoi(c.param); err == nil && n >= 0 && n < mcintosh.SourceCount {
			*v = n
		}
	}
	return s.sourceReply(name, *v, s.quotedNames)
}

func (s *Server) sourceReply(name string, index int, quoted bool) string {
	reply := intReply(name, index)
	if quoted {
		if label, ok := mcintosh.SourceName(index); ok {
			reply += ` "` + label + `"`
		}
	}
	return reply
}

func switchValue(raw, on, off string, current bool) bool {
	switch raw {
	case on:
		return true
	case off:
		return false
	default:
		return !current
	}
}

func boolReply(name string, v bool) string {
	if v {
		return "!" + name + "(1)"
	}
	return "!" + name + "(0)"
}

func intReply(name string, v int) string {
	return "!" + name + "(" + strconv.Itoa(v) + ")"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
