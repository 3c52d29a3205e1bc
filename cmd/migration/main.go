package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/league-sync/db"
	"github.com/riskibarqy/league-sync/internal/platform/dburl"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

type command struct {
	name    string
	steps   int
	version int
	target  uint
}

func main() {
	logger := logging.NewJSON(logging.LevelInfo).Named("migration")
	defer func() { _ = logger.Sync() }()

	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		logger.Error("DB_URL is required")
		os.Exit(1)
	}

	m, source, err := newMigrator(dburl.Normalize(dbURL, envBool("DB_DISABLE_PREPARED_BINARY_RESULT")))
	if err != nil {
		logger.Error("create migrator failed", "error", err)
		os.Exit(1)
	}
	defer closeMigrator(logger, m)

	if err := run(logger, m, cmd); err != nil {
		logger.Error("migration command failed", "command", cmd.name, "source", source, "error", err)
		os.Exit(1)
	}
}

// newMigrator reads migrations from MIGRATIONS_DIR when set, otherwise from the files embedded in the binary.
func newMigrator(dbURL string) (*migrate.Migrate, string, error) {
	if dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("resolve MIGRATIONS_DIR: %w", err)
		}
		sourceURL := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(sourceURL, dbURL)
		return m, sourceURL, err
	}

	src, err := iofs.New(db.Migrations, db.MigrationsRoot)
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	return m, "embedded", err
}

func run(logger *logging.Logger, m *migrate.Migrate, cmd command) error {
	switch cmd.name {
	case "up":
		if err := ignoreNoChange(logger, m.Up()); err != nil {
			return err
		}
		logger.Info("migrations applied")
	case "down":
		if err := ignoreNoChange(logger, m.Steps(-cmd.steps)); err != nil {
			return err
		}
		logger.Info("migrations rolled back", "steps", cmd.steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if err := m.Force(cmd.version); err != nil {
			return fmt.Errorf("force version %d: %w", cmd.version, err)
		}
		logger.Info("migration version forced", "version", cmd.version)
	case "goto":
		if err := ignoreNoChange(logger, m.Migrate(cmd.target)); err != nil {
			return err
		}
		logger.Info("migrated to target version", "version", int64(cmd.target))
	}
	return nil
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("missing command")
	}

	cmd := command{name: strings.ToLower(strings.TrimSpace(args[0]))}
	rest := args[1:]
	switch cmd.name {
	case "up", "version":
		return cmd, nil
	case "down":
		steps, err := parseSteps(rest)
		if err != nil {
			return command{}, err
		}
		cmd.steps = steps
		return cmd, nil
	case "force":
		if len(rest) == 0 {
			return command{}, fmt.Errorf("force requires a version argument")
		}
		version, err := parseVersion(rest[0])
		if err != nil {
			return command{}, err
		}
		cmd.version = version
		return cmd, nil
	case "goto", "migrate":
		if len(rest) == 0 {
			return command{}, fmt.Errorf("goto requires a target version argument")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(rest[0]), 10, 64)
		if err != nil {
			return command{}, fmt.Errorf("invalid target version %q: %w", rest[0], err)
		}
		cmd.name = "goto"
		cmd.target = uint(target)
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < -1 {
		return 0, fmt.Errorf("version must be >= -1")
	}
	return value, nil
}

func ignoreNoChange(logger *logging.Logger, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(logger *logging.Logger, m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source failed", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db failed", "error", dbErr)
	}
}

func envBool(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <version>|goto <version>>\n", name)
	fmt.Fprintln(os.Stderr, "env: DB_URL (required), MIGRATIONS_DIR (optional, defaults to embedded migrations)")
}
