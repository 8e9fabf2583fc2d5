package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogsite/app/config"
	"blogsite/app/repositories"
	"blogsite/app/repositories/postgres"
)

var osExit = os.Exit

// HandleCommand runs a blogsite subcommand and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "help":
		printHelp()
		return 0
	case "version":
		fmt.Printf("blogsite version %s\n", AppVersion)
		return 0
	case "serve":
		return RunAppServer(args[1:])
	}

	_, cfg, err := loadConfig()
	if err != nil {
		failure("Failed to load settings: %v", err)
		osExit(1)
		return 1
	}

	switch cmd {
	case "migrate":
		down := len(args) > 1 && args[1] == "down"
		return migrateDb(cfg, down)
	case "init":
		if cfg.Store.Driver == config.DriverPostgres {
			return migrateDb(cfg, false)
		}
		return initDb(cfg.Store.Badger.Path)
	case "clean":
		return clean(cfg.Store.Badger.Path)
	case "backup":
		return backup(cfg.Store.Badger.Path)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
		return restore(cfg.Store.Badger.Path, args[1])
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		osExit(1)
		return 1
	}
}

func printHelp() {
	helpText := `Usage: blogsite <command> [options]

Commands:
  serve [addr]                    Run the blog (default address from settings.toml)
  migrate [down]                  Apply (or roll back one) PostgreSQL migration
  init                            Initialize a new empty database
  clean                           Delete the Badger database
  backup                          Create a backup of the Badger database
  restore <file>                  Restore the Badger database from a backup
  version                         Show version information
  help                            Display this help message
`
	fmt.Println(helpText)
}

// migrateDb applies or rolls back the PostgreSQL schema.
func migrateDb(cfg *config.Config, down bool) int {
	if cfg.Store.Driver != config.DriverPostgres {
		fmt.Printf("Migrations only apply to the %s store (current: %s)\n", config.DriverPostgres, cfg.Store.Driver)
		return 1
	}
	if down {
		if err := postgres.Rollback(cfg.Store.Postgres.DSN); err != nil {
			failure("Failed to roll back migration: %v", err)
			return 1
		}
		success("Rolled back one migration")
		return 0
	}
	version, err := postgres.Migrate(cfg.Store.Postgres.DSN)
	if err != nil {
		failure("Failed to migrate database: %v", err)
		return 1
	}
	success("Database migrated to version %d", version)
	return 0
}

// clean removes the database.
func clean(dbPath string) int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(dbPath); err != nil {
		failure("Failed to clean database: %v", err)
		return 1
	}
	success("Database cleaned successfully")
	return 0
}

// initDb initializes a new empty database.
func initDb(dbPath string) int {
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		failure("Failed to create database directory: %v", err)
		return 1
	}

	db, err := repositories.OpenBadger(dbPath)
	if err != nil {
		failure("Failed to initialize database: %v", err)
		return 1
	}
	defer db.Close()

	success("Database initialized successfully")
	return 0
}

// backup writes a full backup of the database into backupDir.
func backup(dbPath string) int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		failure("Failed to create backup directory: %v", err)
		return 1
	}

	db, err := repositories.OpenBadger(dbPath)
	if err != nil {
		failure("Failed to open database: %v", err)
		return 1
	}
	defer db.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		failure("Failed to create backup file: %v", err)
		return 1
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		failure("Failed to backup database: %v", err)
		return 1
	}

	success("Database backed up successfully to %s", backupFile)
	return 0
}

// restore replaces the database with the contents of backupFile.
func restore(dbPath, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		failure("Failed to stat backup file: %v", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(dbPath); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			failure("Failed to remove existing database: %v", err)
			return 1
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		failure("Failed to create database directory: %v", err)
		return 1
	}

	db, err := repositories.OpenBadger(dbPath)
	if err != nil {
		failure("Failed to open database: %v", err)
		return 1
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		failure("Failed to open backup file: %v", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return db.Load(f, 4)
	}()
	if err != nil {
		failure("Failed to restore database: %v", err)
		return 1
	}

	success("Database restored successfully")
	return 0
}
