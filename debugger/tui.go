package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the terminal front end over a Debugger session.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout *tview.Flex

	DisassemblyView *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

// NewTUI builds a terminal UI around d.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{Debugger: d, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ")
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.runCommand("help")
			return nil
		case tcell.KeyF5:
			t.runCommand("continue")
			return nil
		case tcell.KeyF11:
			t.runCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd != "" {
		t.runCommand(cmd)
		t.CommandInput.SetText("")
	}
}

func (t *TUI) runCommand(cmd string) {
	err := t.Debugger.ExecuteCommand(cmd)
	if output := t.Debugger.GetOutput(); output != "" {
		t.writeOutput(output)
	}
	if err != nil {
		t.writeOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	t.RefreshAll()
}

func (t *TUI) writeOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current debugger state.
func (t *TUI) RefreshAll() {
	t.DisassemblyView.SetText(FormatDisassembly(t.Debugger.Layout, t.Debugger.Interp.Regs.PC, t.Debugger.Breakpoints, 8))
	t.RegisterView.SetText(FormatRegisters(&t.Debugger.Interp.Regs))
	t.MemoryView.SetText(t.formatMemory())
	t.BreakpointsView.SetText(FormatBreakpoints(t.Debugger.Breakpoints.All()))
	t.App.Draw()
}

func (t *TUI) formatMemory() string {
	addr := t.MemoryAddress
	if addr == 0 {
		addr = t.Debugger.Interp.Regs.PC
	}
	var lines []string
	for row := 0; row < 12; row++ {
		rowAddr := addr + uint32(row*16)
		line := fmt.Sprintf("0x%08X: ", rowAddr)
		var hexBytes []string
		var ascii []byte
		for col := uint32(0); col < 16; col++ {
			b, err := t.Debugger.Interp.Mem.ReadByte(rowAddr + col)
			if err != nil {
				hexBytes = append(hexBytes, "??")
				ascii = append(ascii, '.')
				continue
			}
			hexBytes = append(hexBytes, fmt.Sprintf("%02X", b))
			if b >= 32 && b < 127 {
				ascii = append(ascii, b)
			} else {
				ascii = append(ascii, '.')
			}
		}
		line += strings.Join(hexBytes, " ") + "  " + string(ascii)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Run starts the terminal UI's event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.writeOutput("mipsgo debugger. F1 help, F5 continue, F11 step, Ctrl-C quit.\n")
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

// Stop shuts down the terminal UI.
func (t *TUI) Stop() { t.App.Stop() }
