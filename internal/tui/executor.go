package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// dispatchMsg carries a function to run inside Update
type dispatchMsg struct {
	fn func()
}

// ProgramExecutor implements domain.Executor on top of a Bubble Tea program,
// making the program's update loop the session's owning context.
// Functions posted before Attach are held and delivered once attached.
type ProgramExecutor struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
}

// NewProgramExecutor creates an executor; call Attach once the program exists
func NewProgramExecutor() *ProgramExecutor {
	return &ProgramExecutor{}
}

// Attach binds the executor to a program and flushes held functions
func (e *ProgramExecutor) Attach(p *tea.Program) {
	e.mu.Lock()
	e.program = p
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, fn := range pending {
		e.send(p, fn)
	}
}

// Post schedules fn on the program's update loop without blocking
func (e *ProgramExecutor) Post(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	p := e.program
	if p == nil {
		e.pending = append(e.pending, fn)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.send(p, fn)
}

func (e *ProgramExecutor) send(p *tea.Program, fn func()) {
	// Send blocks until the loop receives the message (or the program exits)
	go p.Send(dispatchMsg{fn: fn})
}
