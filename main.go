// Package main is the entry point of vrsync.
package main

import (
	"github.com/samber/lo"
	"github.com/vrsync/vrsync/cmd"
	"github.com/vrsync/vrsync/config"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/player"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go player.CollectGarbage()

	cmd.Execute()
}
