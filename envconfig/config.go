// config.go - Haupt-Konfigurationsfunktionen fuer torchvideo
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (TORCHVIDEO_DEBUG)
// - NumWorkers: Parallelitaet fuer Batch-Transformationen (TORCHVIDEO_NUM_WORKERS)
// - Var: Liest eine Environment-Variable
//
// Weitere Konfigurationen sind ausgelagert:
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via TORCHVIDEO_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TORCHVIDEO_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// NumWorkers gibt die maximale Anzahl paralleler Clips in ApplyBatch zurueck
// Konfigurierbar via TORCHVIDEO_NUM_WORKERS
// Default: Anzahl CPU-Kerne
func NumWorkers() int {
	n := Uint("TORCHVIDEO_NUM_WORKERS", 0)()
	if n == 0 {
		return runtime.NumCPU()
	}
	return int(n)
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
