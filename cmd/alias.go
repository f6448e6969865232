/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/last-fm-charts/internal/store"
)

var aliasCmd = &cobra.Command{
	Use:   "alias <alias-id> <canonical-id>",
	Short: "Counts the plays of one track id towards another track",
	Long: `Future chart computations attribute plays of the alias id to the
canonical track. With --list, prints the stored aliases instead.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("list") {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		if viper.GetBool("list") {
			err = listAliases(viper.GetString("database"), currentUser())
		} else {
			err = addAlias(viper.GetString("database"), currentUser(), args[0], args[1])
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(aliasCmd)

	var list bool
	aliasCmd.Flags().BoolVar(&list, "list", false, "List the stored aliases")
	viper.BindPFlag("list", aliasCmd.Flags().Lookup("list"))
}

func addAlias(dbPath, user, alias, canonical string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, res, err := db.LoadChart(user)
	if err != nil {
		return fmt.Errorf("loading chart: %w", err)
	}
	if _, ok := repo.Get(res.ResolveOrSelf(canonical)); !ok {
		return fmt.Errorf("unknown track %q", canonical)
	}

	if err := res.RegisterAlias(alias, canonical); err != nil {
		return fmt.Errorf("aliasing: %w", err)
	}
	if err := db.SaveAliases(user, res.Pairs()); err != nil {
		return err
	}

	fmt.Printf("%s now counts towards %s; run chart to recompute\n", alias, res.ResolveOrSelf(alias))
	return nil
}

func listAliases(dbPath, user string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	pairs, err := db.GetAliases(user)
	if err != nil {
		return err
	}
	aliases := make([]string, 0, len(pairs))
	for alias := range pairs {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		fmt.Printf("%s -> %s\n", alias, pairs[alias])
	}
	return nil
}
