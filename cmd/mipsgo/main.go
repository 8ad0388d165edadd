// Command mipsgo is the CLI front end over the assembler and interpreter:
// run a program to completion, assemble it and report errors or dump its
// symbol table, launch the terminal debugger, or start the WebSocket host
// service.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/holtzmann/mipsgo/apiserver"
	"github.com/holtzmann/mipsgo/asm"
	"github.com/holtzmann/mipsgo/config"
	"github.com/holtzmann/mipsgo/debugger"
	"github.com/holtzmann/mipsgo/interp"
	"github.com/holtzmann/mipsgo/source"
)

var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "asm":
		err = asmCmd(os.Args[2:])
	case "disasm":
		err = disasmCmd(os.Args[2:])
	case "debug":
		err = debugCmd(os.Args[2:])
	case "serve":
		err = serveCmd(os.Args[2:])
	case "version":
		fmt.Printf("mipsgo %s\n", Version)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "mipsgo: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: mipsgo <command> [arguments]

commands:
  run <file>     assemble and interpret a MIPS source file to completion
  asm <file>     assemble only; report errors or dump the symbol table
  disasm <file>  assemble and print a disassembly listing of the text segment
  debug <file>   launch the interactive terminal debugger
  serve          start the WebSocket host service
  version        print the version and exit`)
}

func loadConfig(configFlag string) *config.Config {
	if configFlag != "" {
		cfg, err := config.LoadFrom(configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mipsgo: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mipsgo: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func assembleFile(path string) (*source.File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI argument names the file to run
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return source.NewFromString(path, string(data)), nil
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a config.toml overriding defaults")
	ioMode := fs.String("io-mode", "", "override the configured I/O mode (syscall|mmio)")
	maxCycles := fs.Uint64("max-cycles", 0, "override the configured cycle limit (0 keeps the config value)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mipsgo run [flags] <file>")
	}

	cfg := loadConfig(*configPath)
	if *ioMode != "" {
		cfg.Execution.IOMode = *ioMode
	}
	if *maxCycles != 0 {
		cfg.Execution.MaxCycles = *maxCycles
	}

	f, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}
	layout, err := asm.Assemble([]*source.File{f})
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	it := interp.NewInterpreter(os.Stdin, os.Stdout)
	if err := cfg.ApplyTrace(it, os.Stderr); err != nil {
		return err
	}
	code, err := it.Interpret(layout)
	if err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	os.Exit(int(code))
	return nil
}

func asmCmd(args []string) error {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	dumpSymbols := fs.Bool("symbols", false, "dump the resolved symbol table instead of just reporting success")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mipsgo asm [flags] <file>")
	}

	f, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}
	layout, err := asm.Assemble([]*source.File{f})
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	if *dumpSymbols {
		names := make([]string, 0, len(layout.Symbols))
		for name := range layout.Symbols {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-20s 0x%08X\n", name, layout.Symbols[name])
		}
		return nil
	}

	fmt.Printf("assembled %s: entry 0x%08X, %d bytes of text, %d bytes of data\n",
		fs.Arg(0), layout.Entry, layout.TextSize, len(layout.Data))
	return nil
}

func disasmCmd(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a config.toml overriding defaults")
	format := fs.String("format", "", "override the configured listing format (text|json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mipsgo disasm [flags] <file>")
	}

	cfg := loadConfig(*configPath)
	if *format != "" {
		cfg.Output.Format = *format
	}

	f, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}
	layout, err := asm.Assemble([]*source.File{f})
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	switch cfg.Output.Format {
	case "", "text":
		fmt.Print(debugger.FormatListing(layout))
	case "json":
		type entry struct {
			Address string `json:"address"`
			Text    string `json:"text"`
		}
		var entries []entry
		for addr := layout.TextBase; addr < layout.TextBase+layout.TextSize; addr += 4 {
			inst := layout.InstructionAt(addr)
			if inst == nil {
				continue
			}
			entries = append(entries, entry{
				Address: fmt.Sprintf("0x%08X", addr),
				Text:    debugger.Disassemble(inst),
			})
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		return fmt.Errorf("unrecognised output format %q (want \"text\" or \"json\")", cfg.Output.Format)
	}
	return nil
}

func debugCmd(args []string) error {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a config.toml overriding defaults")
	tui := fs.Bool("tui", true, "use the full-screen terminal UI instead of a plain command loop")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mipsgo debug [flags] <file>")
	}

	cfg := loadConfig(*configPath)

	f, err := assembleFile(fs.Arg(0))
	if err != nil {
		return err
	}
	layout, err := asm.Assemble([]*source.File{f})
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	it := interp.NewInterpreter(os.Stdin, os.Stdout)
	if err := cfg.ApplyTrace(it, os.Stderr); err != nil {
		return err
	}
	d := debugger.NewDebugger(it)
	if err := d.LoadProgram(layout); err != nil {
		return err
	}

	if *tui {
		return debugger.NewTUI(d).Run()
	}
	return runPlainDebugLoop(d)
}

func runPlainDebugLoop(d *debugger.Debugger) error {
	fmt.Println("mipsgo debugger (plain mode). type 'help' for commands.")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(mipsgo) ")
		if !sc.Scan() {
			return sc.Err()
		}
		if err := d.ExecuteCommand(sc.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		fmt.Print(d.GetOutput())
	}
}

func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	srv := apiserver.NewServer(*addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start() }()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
