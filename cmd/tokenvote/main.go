package main

import (
	"runtime"

	"github.com/tokenvote/tokenvote/cmd/tokenvote/cmd"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	cmd.Execute()
}
