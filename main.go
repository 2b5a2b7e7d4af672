// @title Cyber quiz API
// @version 1.0
// @description Collects cybersecurity and RGPD awareness quiz results and serves admin statistics.

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/app"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("cyber-quiz", pflag.ExitOnError)
	configDir := flags.String("config", "configs", "directory containing config.yaml")
	flags.String("port", "", "listen port, overrides server.port")
	flags.String("results-file", "", "results CSV path, overrides store.results_file")
	setupAdmin := flags.Bool("setup-admin", false, "read an admin password on stdin, print its bcrypt hash and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	if *setupAdmin {
		if err := runSetupAdmin(); err != nil {
			log.Fatalf("setup-admin: %v", err)
		}
		return
	}

	v := viper.New()
	if err := v.BindPFlag("server.port", flags.Lookup("port")); err != nil {
		log.Fatalf("Failed to bind flag: %v", err)
	}
	if err := v.BindPFlag("store.results_file", flags.Lookup("results-file")); err != nil {
		log.Fatalf("Failed to bind flag: %v", err)
	}

	cfg, err := config.LoadConfigWith(v, *configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}

func runSetupAdmin() error {
	fmt.Fprint(os.Stderr, "Admin password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return err
	}
	password = strings.TrimRight(password, "\r\n")

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	fmt.Fprintln(os.Stderr, "Set it as admin.password_hash in configs/config.yaml or CYBER_QUIZ_ADMIN_PASSWORD_HASH / ADMIN_PASSWORD_HASH.")
	return nil
}
