package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/c8vm"
)

// Server runs a console and exposes it to a browser: the screen and the
// keyboard travel over websockets, the controls are plain HTTP endpoints.
type Server struct {
	*c8vm.InMemoryKeyboard
	*c8vm.DummyBuzzer

	runner   *c8vm.Runner
	debugger *HttpDebugger
	mux      *http.ServeMux

	socket  *websocket.Conn
	wsMutex sync.Mutex
}

type ServerConfig struct {
	ScreenSettings c8vm.ScreenSettings
	UseDebugger    bool
	// StaticDir is served at the root
	StaticDir  string
	CpuConfigs []c8vm.CpuConfigCb
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		ScreenSettings: c8vm.SmallScreen,
		UseDebugger:    false,
		StaticDir:      "./static",
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: c8vm.NewInMemoryKeyboard(),
		DummyBuzzer:      c8vm.NewDummyBuzzer(),
		mux:              http.NewServeMux(),
	}

	cpuConfigs := append([]c8vm.CpuConfigCb{func(c *c8vm.CpuConfig) {
		c.ScreenSettings = config.ScreenSettings
	}}, config.CpuConfigs...)
	s.runner = c8vm.NewRunner(c8vm.NewCpu(cpuConfigs...), s, s, s.DummyBuzzer)
	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.runner)
	}

	s.routes(config.StaticDir)

	return s
}

func (server *Server) Runner() *c8vm.Runner {
	return server.runner
}

// Speed sets the speed in cycles per second
func (server *Server) Speed(s int) {
	server.runner.SetSpeedInHz(uint(max(s, 0)))
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	return server.runner.LoadProgram(program)
}

// Handler returns the HTTP routes of the server
func (server *Server) Handler() http.Handler {
	return server.mux
}

func noCache(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type")
		w.Header().Set("Cache-Control", "no-cache")

		h(w, r)
	}
}

func (server *Server) routes(staticDir string) {
	server.mux.Handle("/", http.FileServer(http.Dir(staticDir)))

	server.mux.HandleFunc("/start", noCache(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Starting")
		server.runner.Start()
	}))
	server.mux.HandleFunc("/stop", noCache(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Stopping")
		server.runner.Stop()
	}))
	server.mux.HandleFunc("/reset", noCache(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Stopping and resetting")
		server.runner.Stop()
		server.runner.Reset()
	}))
	server.mux.HandleFunc("/step", noCache(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Single Frame")
		if err := server.runner.LoopOnce(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
		}
	}))
	server.mux.HandleFunc("/speed", noCache(func(w http.ResponseWriter, r *http.Request) {
		hz, err := strconv.Atoi(r.URL.Query().Get("hz"))
		if err != nil {
			http.Error(w, "hz must be a number", http.StatusBadRequest)
			return
		}

		server.Speed(hz)
		slog.Info("Speed changed", slog.Int("hz", int(server.runner.SpeedInHz())))
		fmt.Fprintf(w, "%d", server.runner.SpeedInHz())
	}))
	server.mux.HandleFunc("/buzzer", noCache(func(w http.ResponseWriter, r *http.Request) {
		if server.IsPlaying() {
			fmt.Fprint(w, "1")
		} else {
			fmt.Fprint(w, "0")
		}
	}))
	server.mux.HandleFunc("/display", server.handleDisplay)
	server.mux.HandleFunc("/keys", server.handleKeys)

	if server.debugger != nil {
		server.mux.HandleFunc("/debugger", server.debugger.handle)
	}
}

func (server *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to display")
	server.setWs(conn)
	defer server.unsetWs(conn)

	// push the current screen to the new client
	server.runner.WithCpu(func(cpu *c8vm.Cpu) {
		server.Render(cpu.Screen)
	})

	// the display is write only, reading detects the disconnection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			slog.Info("Disconnecting from display")
			return
		}
	}
}

// handleKeys reads the keyboard state as a 16-bit big-endian mask, bit n for key n
func (server *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to keyboard")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Info("Disconnecting from keyboard")
			server.Set(c8vm.KeyboardState{})
			return
		}

		if len(msg) != 2 {
			continue
		}
		server.Set(decodeKeys(uint16(msg[0])<<8 | uint16(msg[1])))
	}
}

func decodeKeys(mask uint16) c8vm.KeyboardState {
	state := c8vm.KeyboardState{}
	for k := range state {
		state[k] = mask&(1<<k) != 0
	}

	return state
}

// Listen boots the console, runs it on pause and serves HTTP until ctx is done
func (server *Server) Listen(ctx context.Context, port int) error {
	if err := server.runner.Boot(); err != nil {
		return err
	}

	go func() {
		if err := server.runner.Loop(ctx); err != nil {
			slog.Error("Console stopped", slog.Any("error", err))
		}
	}()

	slog.Info("Listening on port", slog.Int("port", port))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error shutting down the server", slog.Any("error", err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
