package main

import (
	"github.com/woohung/morse-game/cmd"
	"github.com/woohung/morse-game/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
