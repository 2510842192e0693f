package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

var (
	stocksimDataDir = defaultDataDir()
	statePath       = path.Join(stocksimDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "stocksim operator CLI"
	app.Usage = "Command line interface for stocksimd daemon operators"
	app.Commands = append(
		app.Commands,
		&config,
		&newmarket,
		&listmarkets,
		&quotes,
		&book,
		&order,
		&cancel,
		&account,
		&deposit,
		&listorders,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stocksim-operator"
	}
	return filepath.Join(home, ".stocksim-operator")
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	json.Unmarshal(file, &data)

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(stocksimDataDir); os.IsNotExist(err) {
		os.Mkdir(stocksimDataDir, os.ModeDir|0755)
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		if err := os.WriteFile(statePath, []byte("{}"), 0644); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		return err
	}

	for key, value := range data {
		currentData[key] = value
	}

	jsonString, err := json.Marshal(currentData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[stocksim] %v\n", err)
	os.Exit(1)
}
