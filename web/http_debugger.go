package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/guslan/c8vm"
)

type HttpDebugger struct {
	runner *c8vm.Runner

	SendEvery uint
	cycle     uint
	send      chan c8vm.Snapshot
}

// NewHttpDebugger creates a new debugger
// This method will pause the runner, register the hooks and run a single cycle per frame
func NewHttpDebugger(runner *c8vm.Runner) *HttpDebugger {
	deb := &HttpDebugger{
		runner:    runner,
		SendEvery: 1,
		send:      make(chan c8vm.Snapshot, 64),
	}

	runner.AddAfterCycleHook(deb.afterCycle)
	runner.AddErrorHook(deb.afterCycle)
	runner.SetCyclesPerFrame(1)

	runner.Stop()

	return deb
}

func (d *HttpDebugger) handle(w http.ResponseWriter, r *http.Request) {
	slog.Info("Connecting  to debugger")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, d.runner.Snapshot().Bytes()); err != nil {
		return
	}

	slog.Info("Listening for events")
	for {
		select {
		case snapshot := <-d.send:
			if err := conn.WriteMessage(websocket.BinaryMessage, snapshot.Bytes()); err != nil {
				slog.Error("Error writing debugger message", slog.Any("error", err))
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// afterCycle runs with the runner locked, a slow client loses snapshots
// instead of stalling the console
func (d *HttpDebugger) afterCycle(cpu *c8vm.Cpu) {
	d.cycle++
	if d.cycle%max(d.SendEvery, 1) != 0 {
		return
	}

	select {
	case d.send <- cpu.Snapshot():
	default:
	}
}
