package web

import (
	"github.com/gorilla/websocket"
	"github.com/guslan/c8vm"
)

var upgrader = websocket.Upgrader{} // use default options

// Boot implements c8vm.Display and c8vm.Keyboard.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	server.socket = conn
	server.wsMutex.Unlock()
}

func (server *Server) unsetWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	if server.socket == conn {
		server.socket = nil
	}
	server.wsMutex.Unlock()
}

// Render implements c8vm.Display. Frames are the packed screen, one bit per pixel.
func (server *Server) Render(screen *c8vm.Screen) error {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == nil {
		return nil
	}

	// a client that went away must not stop the console
	if err := server.socket.WriteMessage(websocket.BinaryMessage, screen.Packed()); err != nil {
		server.socket = nil
	}

	return nil
}
