package main

import (
	"os"

	"github.com/btccom/nestedmultisig/sink"
	"github.com/btccom/nestedmultisig/wallet"
	"github.com/btcsuite/btclog"
)

// backendLog is the logging backend used to create all subsystem
// loggers. It writes to stdout.
var backendLog = btclog.NewBackend(os.Stdout)

var (
	mainLog   = backendLog.Logger("MAIN")
	walletLog = backendLog.Logger("WLLT")
	sinkLog   = backendLog.Logger("SINK")
)

func init() {
	wallet.UseLogger(walletLog)
	sink.UseLogger(sinkLog)
}

// subsystemLoggers maps each subsystem identifier to its logger.
var subsystemLoggers = map[string]btclog.Logger{
	"MAIN": mainLog,
	"WLLT": walletLog,
	"SINK": sinkLog,
}

// setLogLevels sets the level of every subsystem logger. Unknown
// levels fall back to info.
func setLogLevels(logLevel string) {
	level, _ := btclog.LevelFromString(logLevel)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
