package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"agentevals/internal/config"
	"agentevals/internal/dataset"
	"agentevals/internal/vcs"
)

// datasetDirName holds the starter CSVs copied by init.
const datasetDirName = "evals"

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: <repo>/.agentevals/config.yml)")
		assumeYes := flags.Bool("yes", false, "Accept all prompts")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}

		in := initInput
		if in == nil {
			in = os.Stdin
		}
		confirm := newConfirmer(in, stdout)

		var targetPath string
		var repoRoot string
		configValue := strings.TrimSpace(*configPath)
		if configValue == "" {
			repoRoot = discoverGitRoot("")
			baseDir := repoRoot
			if baseDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					fmt.Fprintf(stderr, "Init failed: %v\n", err)
					return ExitError
				}
				baseDir = wd
			}
			targetPath = config.ConfigPath(baseDir)
		} else {
			abs, err := filepath.Abs(configValue)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			targetPath = abs
			repoRoot = discoverGitRoot(config.ProjectRoot(targetPath))
		}
		configDir := filepath.Dir(targetPath)
		projectRoot := config.ProjectRoot(targetPath)

		if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
			fmt.Fprintf(stderr, "Init failed: config directory %q is not a directory\n", configDir)
			return ExitError
		}
		if _, err := os.Stat(targetPath); err == nil {
			fmt.Fprintf(stderr, "Init failed: config file already exists at %q\n", targetPath)
			return ExitError
		} else if !os.IsNotExist(err) {
			fmt.Fprintf(stderr, "Init failed: stat config file: %v\n", err)
			return ExitError
		}

		if !*assumeYes {
			proceed, err := confirm.ask(fmt.Sprintf("Initialize agentevals in %s?", configDir), true)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			if !proceed {
				fmt.Fprintln(stderr, "Init cancelled.")
				return ExitError
			}
		}

		addGitignore := false
		if repoRoot != "" {
			addGitignore = *assumeYes
			if !*assumeYes {
				answer, err := confirm.ask("Add results and sessions to .gitignore?", true)
				if err != nil {
					fmt.Fprintf(stderr, "Init failed: %v\n", err)
					return ExitError
				}
				addGitignore = answer
			}
		}

		if err := config.Scaffold(targetPath); err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Wrote %s\n", targetPath)

		for _, kind := range []dataset.Kind{dataset.KindRouting, dataset.KindTool} {
			path, written, err := writeStarterDataset(projectRoot, kind)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			if written {
				fmt.Fprintf(stdout, "Wrote %s\n", path)
			} else {
				fmt.Fprintf(stdout, "Kept existing %s\n", path)
			}
		}

		if addGitignore {
			added, err := addGitignoreEntries(repoRoot,
				filepath.Join(projectRoot, config.DefaultResultsDir),
				filepath.Join(configDir, "sessions"),
			)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: update .gitignore: %v\n", err)
				return ExitError
			}
			if len(added) > 0 {
				fmt.Fprintf(stdout, "Updated %s (%s)\n", filepath.Join(repoRoot, ".gitignore"), strings.Join(added, ", "))
			}
		}
		fmt.Fprintln(stdout, "Uncomment the datasets block in the config to evaluate the copied CSVs.")
		return ExitOK
	}
}

// writeStarterDataset copies the embedded dataset for kind under root,
// leaving an existing file untouched.
func writeStarterDataset(root string, kind dataset.Kind) (string, bool, error) {
	path := filepath.Join(root, datasetDirName, kind.DefaultFileName())
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return path, false, fmt.Errorf("stat dataset: %w", err)
	}
	data, err := dataset.DefaultBytes(kind)
	if err != nil {
		return path, false, fmt.Errorf("read embedded dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, false, fmt.Errorf("create dataset dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, false, fmt.Errorf("write dataset: %w", err)
	}
	return path, true, nil
}

// initInput allows tests to override stdin for init prompts.
var initInput io.Reader = os.Stdin

// discoverGitRoot returns the git root or empty when not found.
var discoverGitRoot = func(startDir string) string {
	root, err := vcs.NewClient(startDir, nil).RepoRoot(context.Background())
	if err != nil {
		return ""
	}
	return root
}
