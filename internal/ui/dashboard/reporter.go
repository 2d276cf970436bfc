package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	watchdto "dojo/internal/modules/watch/dto"
)

// ProgramReporter forwards loop events to a running program.
type ProgramReporter struct {
	program *tea.Program
}

func NewProgramReporter(program *tea.Program) ProgramReporter {
	return ProgramReporter{program: program}
}

// Report does not block once the program has exited.
func (r ProgramReporter) Report(event watchdto.Event) {
	r.program.Send(EventMsg{Event: event})
}
