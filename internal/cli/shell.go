// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shell.go - Interactive costgate session.
//
// The shell keeps one App alive across commands and watches the config
// file: an external edit prints a reload hint, and `reload` rebuilds the
// whole app, which re-probes the runtime for a fresh catalog (the catalog
// itself never mutates after construction).
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/peterh/liner"

	"github.com/jeranaias/costgate/internal/config"
)

const shellHelp = `Commands:
  route <text>           Route a task and print the decision
  exec <model> <prompt>  Run a prompt on a local model
  stats [--history N]    Print usage statistics
  doctor                 Environment checks
  reload                 Reload config and re-probe the runtime
  help                   Show this help
  quit                   Exit the shell
`

// HandleShell runs the interactive session.
func HandleShell(app *App, configPath string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(app.Config.DataDir(), "shell_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	configChanged := watchConfig(configPath)

	fmt.Println(TitleStyle.Render("costgate shell"))
	fmt.Println(DimStyle.Render("type 'help' for commands, 'quit' to exit"))

	for {
		select {
		case path := <-configChanged:
			fmt.Println(WarningStyle.Render(fmt.Sprintf("config changed (%s); run 'reload' to apply", path)))
		default:
		}

		input, err := line.Prompt("costgate> ")
		if err != nil {
			// Ctrl-C aborts the prompt, Ctrl-D ends the session.
			if err == liner.ErrPromptAborted {
				continue
			}
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		cmd, rest := fields[0], fields[1:]

		var cmdErr error
		switch cmd {
		case "route":
			cmdErr = HandleRoute(app, rest)
		case "exec", "run":
			cmdErr = HandleExec(app, rest)
		case "stats":
			cmdErr = HandleStats(app, rest)
		case "doctor":
			cmdErr = HandleDoctor(app)
		case "reload":
			fresh, err := NewApp(configPath)
			if err != nil {
				cmdErr = fmt.Errorf("reload failed, keeping current config: %w", err)
				break
			}
			app.Close()
			*app = *fresh
			fmt.Println(SuccessStyle.Render("reloaded") + DimStyle.Render(
				fmt.Sprintf(" (%d providers, %d local)", len(app.Catalog.All()), app.Catalog.LocalCount())))
		case "help":
			fmt.Print(shellHelp)
		case "quit", "exit":
			return nil
		default:
			cmdErr = fmt.Errorf("unknown command %q; try 'help'", cmd)
		}
		if cmdErr != nil {
			fmt.Println(ErrorStyle.Render("error: ") + cmdErr.Error())
		}
	}
}

// watchConfig watches the effective config file and signals edits. A nil
// watcher (no config file on disk) degrades to a channel that never fires.
func watchConfig(configPath string) <-chan string {
	changed := make(chan string, 1)

	path := configPath
	if path == "" {
		if p, err := configFileOnDisk(); err == nil {
			path = p
		}
	}
	if path == "" {
		return changed
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return changed
	}
	// Watch the directory: editors replace files, which drops a watch on
	// the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return changed
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					select {
					case changed <- path:
					default:
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return changed
}

// configFileOnDisk returns the first standard config path that exists.
func configFileOnDisk() (string, error) {
	if explicit := os.Getenv("COSTGATE_CONFIG"); explicit != "" {
		return explicit, nil
	}
	if tomlPath, err := config.ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return tomlPath, nil
		}
	}
	if jsonPath, err := config.ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath, nil
		}
	}
	return "", fmt.Errorf("no config file on disk")
}
