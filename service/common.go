package service

import (
	"fmt"
	"os"

	"blogsite/app/config"
	"blogsite/app/logger"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// AppVersion is reported by the version command and the banner.
const AppVersion = "1.0.0"

// backupDir is where the backup command writes archives.
var backupDir = "data/backups"

// loadConfig reads settings.toml and the BLOG_ environment and configures
// the global logger from the result.
func loadConfig() (*viper.Viper, *config.Config, error) {
	v := config.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stdout); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	return v, cfg, nil
}

func printBanner() {
	fmt.Println(color.YellowString(" _     _                _ _\n| |__ | | ___   __ _ ___(_) |_ ___\n| '_ \\| |/ _ \\ / _` / __| | __/ _ \\\n| |_) | | (_) | (_| \\__ \\ | ||  __/\n|_.__/|_|\\___/ \\__, |___/_|\\__\\___|\n               |___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("blogsite"), AppVersion)
	fmt.Printf("A blog with tags, comments and full text search\n")
	color.HiBlack("=====================================================\n")
}

// confirm asks a yes/no question on stdin. Anything but y or Y is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

func success(format string, args ...interface{}) {
	fmt.Println(color.GreenString(format, args...))
}

func failure(format string, args ...interface{}) {
	fmt.Println(color.RedString(format, args...))
}
