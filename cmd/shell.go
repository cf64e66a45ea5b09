package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	cGreeting.Println("cricstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("cricstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := shellExec(line)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// shellExec runs one REPL line and reports whether the session should end.
func shellExec(line string) (bool, error) {
	tokens := strings.Fields(line)
	cmd, args := tokens[0], tokens[1:]

	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		shellHelp()
	case "list":
		return false, runList(nil, nil)
	case "summary":
		return false, runSummary(nil, nil)
	case "show":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: show <hash-prefix> [batting|bowling|allround|matches]")
		}
		view := viewBatting
		if len(args) > 1 {
			view = args[1]
		}
		return false, shellShow(args[0], view)
	case "allrounders":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: allrounders <hash-prefix> [min-wickets]")
		}
		threshold := cfg.AllRounderMinWkts
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return false, fmt.Errorf("invalid min-wickets %q", args[1])
			}
			threshold = n
		}
		return false, showAllrounders(args[0], threshold)
	case "player":
		// Player names contain spaces; several are separated by commas.
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))
		if rest == "" {
			return false, fmt.Errorf("usage: player <name>[, <name>...]")
		}
		var names []string
		for _, n := range strings.Split(rest, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		playerDataset = ""
		return false, runPlayer(nil, names)
	default:
		cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
	}
	return false, nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored datasets"},
		{"summary", "database overview and leaderboards"},
		{"show <hash-prefix> [view]", "show a dataset (batting|bowling|allround|matches)"},
		{"allrounders <hash-prefix> [n]", "players who batted and took n+ wickets"},
		{"player <name>[, <name>...]", "cross-dataset history for one or more players"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellShow(prefix, view string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ds, err := db.GetDatasetByPrefix(prefix)
	if err != nil {
		return err
	}
	if ds == nil {
		return fmt.Errorf("no dataset found with prefix %q", prefix)
	}
	return showByHash(db, ds.Hash, view)
}
