package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/hgrotzin/language-localizer/internal/cli"
)

func init() {
	// SDL3 requires the main thread for some operations.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
