package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/config"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/games"
	"github.com/cbodonnell/scoreboard/pkg/legacy"
	"github.com/cbodonnell/scoreboard/pkg/log"
	"github.com/cbodonnell/scoreboard/pkg/registry"
	"github.com/cbodonnell/scoreboard/pkg/repositories"
	"github.com/cbodonnell/scoreboard/pkg/workers"
)

const usage = `usage: scoreboard [-log-level level] [-env file] <command> [arguments]

commands:
  games                                       list the available games
  list                                        list stored matches
  create -game key -name name [-settings json]
  show <id>                                   print a match document
  rename <id> -name name
  delete <id>
  import-legacy -name name <file>             import an old money save
  transfer <id> -from id -to id -amount n     move money between players
`

type app struct {
	cfg        *config.Config
	repository repositories.Repository
	manager    *registry.Manager
}

func main() {
	logLevel := flag.String("log-level", "", "Log level, overrides SCOREBOARD_LOG_LEVEL")
	envFile := flag.String("env", ".env", "Env file to load")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	parsedLogLevel, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse log level: %v\n", err)
		os.Exit(1)
	}
	logger := log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	repository, err := repositories.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("Failed to open repository: %v", err)
		os.Exit(1)
	}
	defer repository.Close(ctx)

	a := &app{
		cfg:        cfg,
		repository: repository,
		manager: registry.NewManager(registry.NewManagerOptions{
			Registry:   games.NewRegistry(),
			Repository: repository,
		}),
	}

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		log.Error("%s: %v", args[0], err)
		repository.Close(ctx)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "games":
		return a.games()
	case "list":
		return a.list(ctx)
	case "create":
		return a.create(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "rename":
		return a.rename(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "import-legacy":
		return a.importLegacy(ctx, args)
	case "transfer":
		return a.transfer(ctx, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func (a *app) games() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTITLE\tPLAYER FIELDS\tGLOBAL FIELDS")
	for _, g := range a.manager.Registry().List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Key, g.Title, fieldNames(g.Players.Fields()), fieldNames(g.Globals.Fields()))
	}
	return w.Flush()
}

func (a *app) list(ctx context.Context) error {
	summaries, err := a.manager.ListMatches(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGAME\tNAME")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Mode, s.Name)
	}
	return w.Flush()
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	gameKey := fs.String("game", "", "Game key")
	name := fs.String("name", "", "Match name")
	settings := fs.String("settings", "", "Settings JSON, defaults to the game's settings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gameKey == "" {
		return fmt.Errorf("-game is required")
	}

	var raw json.RawMessage
	if *settings != "" {
		raw = json.RawMessage(*settings)
	}
	id, err := a.manager.CreateMatch(ctx, *gameKey, *name, raw)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	id, err := matchID(args)
	if err != nil {
		return err
	}
	m, err := a.load(ctx, id)
	if err != nil {
		return err
	}
	doc, err := m.Document()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format match: %v", err)
	}
	fmt.Println(string(out))
	return nil
}

func (a *app) rename(ctx context.Context, args []string) error {
	id, err := matchID(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	name := fs.String("name", "", "New match name")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if err := a.manager.Rename(ctx, id, *name); err != nil {
		if registry.IsNotFound(err) {
			return fmt.Errorf("match %s not found", id)
		}
		return err
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	id, err := matchID(args)
	if err != nil {
		return err
	}
	return a.manager.DeleteMatch(ctx, id)
}

func (a *app) importLegacy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-legacy", flag.ContinueOnError)
	name := fs.String("name", "Imported match", "Match name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one legacy save file")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open legacy save: %v", err)
	}
	defer f.Close()

	b, err := legacy.Import(f)
	if err != nil {
		return err
	}
	m, err := a.manager.ImportMatch(ctx, games.MoneyGame.Key, *name, nil, b)
	if err != nil {
		return err
	}
	fmt.Println(m.ID)
	return nil
}

// transfer edits a match the way an interactive client does: through the
// board, with the autosave worker persisting the result.
func (a *app) transfer(ctx context.Context, args []string) error {
	id, err := matchID(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fromFlag := fs.Uint64("from", 0, "Paying player ID")
	toFlag := fs.Uint64("to", 0, "Receiving player ID")
	amount := fs.Int("amount", 0, "Amount of money")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	from, err := playerID("from", *fromFlag)
	if err != nil {
		return err
	}
	to, err := playerID("to", *toFlag)
	if err != nil {
		return err
	}

	m, err := a.load(ctx, id)
	if err != nil {
		return err
	}
	if m.Game != games.MoneyGame {
		return fmt.Errorf("match %s is a %s match, not a money match", id, m.Game.Key)
	}

	autosaveWorker := workers.NewAutosaveWorker(workers.NewAutosaveWorkerOptions{
		Match:       m,
		Saver:       a.manager,
		QuietPeriod: a.cfg.AutosaveDelay,
	})
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go autosaveWorker.Start(workerCtx)

	if err := games.Transfer(m.Board, from, to, *amount); err != nil {
		return err
	}
	if err := autosaveWorker.Flush(ctx); err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	for _, pid := range []board.PlayerID{from, to} {
		fmt.Printf("%d\t%s\t%d\n", pid, board.Value(m.Board, pid, games.Name), board.Value(m.Board, pid, games.Money))
	}
	return nil
}

// playerID narrows a flag value to a player ID, rejecting values a board
// could never have handed out.
func playerID(flagName string, v uint64) (board.PlayerID, error) {
	if v > uint64(board.MaxPlayerID) {
		return 0, fmt.Errorf("-%s %d is not a player ID", flagName, v)
	}
	return board.PlayerID(v), nil
}

func (a *app) load(ctx context.Context, id string) (*registry.Match, error) {
	m, err := a.manager.LoadMatch(ctx, id)
	if err != nil {
		if registry.IsNotFound(err) {
			return nil, fmt.Errorf("match %s not found: %w", id, err)
		}
		return nil, err
	}
	return m, nil
}

func matchID(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return "", fmt.Errorf("expected a match ID")
	}
	return args[0], nil
}

func fieldNames(defs []facet.Def) string {
	if len(defs) == 0 {
		return "-"
	}
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name())
	}
	return strings.Join(names, ",")
}
