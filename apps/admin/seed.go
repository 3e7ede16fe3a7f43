package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/trezcool/safari/storage/database/seed"
)

func (cli *commandLine) seed(path string) error {
	var f *seed.File
	var err error
	if path == "" {
		f, err = seed.LoadDefault()
	} else {
		f, err = seed.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	}
	if err != nil {
		return err
	}

	report, err := seed.Run(context.Background(), cli.svcs, f, cli.logger)
	if err != nil {
		return err
	}
	if len(report) == 0 {
		fmt.Println("nothing to seed")
		return nil
	}
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-14s %d\n", name, report[name])
	}
	return nil
}
